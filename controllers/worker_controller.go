package controllers

import (
	"errors"
	"fmt"
	"time"

	"fiber-mes/config"
	"fiber-mes/models"
	"fiber-mes/repositories"
	"fiber-mes/services"
	"fiber-mes/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WorkerController struct {
	DB      *gorm.DB
	service *services.BatchService
}

func NewWorkerController(DB *gorm.DB) *WorkerController {
	service := services.NewBatchService(
		repositories.NewFormulationRepository(DB),
		repositories.NewStockRepository(DB),
		repositories.NewBatchRepository(DB),
		repositories.NewWorkerRepository(DB),
	)
	service.Log = config.GetLogger()
	return &WorkerController{DB: DB, service: service}
}

func (c *WorkerController) CreateWorker(ctx *fiber.Ctx) error {
	var input struct {
		Name                   string          `json:"name" validate:"required,min=2"`
		EmployeeCode           string          `json:"employee_code" validate:"required,min=2"`
		Shift                  string          `json:"shift"`
		StandardOutputPerShift decimal.Decimal `json:"standard_output_per_shift"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if input.StandardOutputPerShift.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Standard output must not be negative"})
	}

	userID := currentUserID(ctx)
	worker := models.Worker{
		Name:                   input.Name,
		EmployeeCode:           input.EmployeeCode,
		Shift:                  input.Shift,
		StandardOutputPerShift: input.StandardOutputPerShift,
		CreatedBy:              userID,
		UpdatedBy:              userID,
	}

	repo := repositories.NewWorkerRepository(c.DB)
	if err := repo.Create(&worker); err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"worker": worker}})
}

func (c *WorkerController) GetWorkers(ctx *fiber.Ctx) error {
	repo := repositories.NewWorkerRepository(c.DB)
	workers, err := repo.List()
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"workers": workers}})
}

func (c *WorkerController) GetWorker(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker id"})
	}

	repo := repositories.NewWorkerRepository(c.DB)
	worker, err := repo.Get(id)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"worker": worker}})
}

func (c *WorkerController) UpdateWorker(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker id"})
	}

	var input struct {
		Name                   string          `json:"name"`
		Shift                  string          `json:"shift"`
		StandardOutputPerShift decimal.Decimal `json:"standard_output_per_shift"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}
	if input.StandardOutputPerShift.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Standard output must not be negative"})
	}

	repo := repositories.NewWorkerRepository(c.DB)
	worker, err := repo.Get(id)
	if err != nil {
		return serviceError(ctx, err)
	}

	if input.Name != "" {
		worker.Name = input.Name
	}
	if input.Shift != "" {
		worker.Shift = input.Shift
	}
	if input.StandardOutputPerShift.IsPositive() {
		worker.StandardOutputPerShift = input.StandardOutputPerShift
	}
	worker.UpdatedBy = currentUserID(ctx)

	if err := repo.Update(worker); err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"worker": worker}})
}

// GetWorkerEfficiency serves the cached score. Pass ?recompute=true to
// rebuild it from history first.
func (c *WorkerController) GetWorkerEfficiency(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker id"})
	}

	repo := repositories.NewWorkerRepository(c.DB)

	if ctx.QueryBool("recompute") {
		rec, err := c.service.RecomputeWorker(id, time.Now())
		if err != nil {
			return serviceError(ctx, err)
		}
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"efficiency": rec}})
	}

	rec, err := repo.Efficiency(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// No cached record yet. Compute on first read.
			rec, err = c.service.RecomputeWorker(id, time.Now())
			if err != nil {
				return serviceError(ctx, err)
			}
			return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"efficiency": rec}})
		}
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"efficiency": rec}})
}

func (c *WorkerController) RecordFeedback(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker id"})
	}

	var input struct {
		BatchID types.SnowflakeID `json:"batch_id" validate:"required"`
		Tag     string            `json:"tag" validate:"required"`
		Comment string            `json:"comment"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	switch input.Tag {
	case models.FeedbackExcellent, models.FeedbackGood, models.FeedbackNeedsImprovement, models.FeedbackLate:
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown feedback tag"})
	}

	feedback := models.WorkerFeedback{
		WorkerID:     id,
		BatchID:      input.BatchID,
		Tag:          input.Tag,
		Comment:      input.Comment,
		SupervisorID: currentUserID(ctx),
		CreatedAt:    time.Now(),
	}

	repo := repositories.NewWorkerRepository(c.DB)
	if err := repo.AddFeedback(&feedback); err != nil {
		return serviceError(ctx, err)
	}

	// Feedback changes the score, refresh the cached record.
	if _, err := c.service.RecomputeWorker(id, time.Now()); err != nil {
		config.LogError(config.GetLogger(), "worker_controller", "RecordFeedback", "recompute efficiency", nil, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"feedback": feedback}})
}

// ExportMonthlyReport streams the worker's monthly performance report.
// format=excel (default) or format=pdf, month=YYYY-MM.
func (c *WorkerController) ExportMonthlyReport(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid worker id"})
	}

	month, err := time.Parse("2006-01", ctx.Query("month", time.Now().Format("2006-01")))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid month, expected YYYY-MM"})
	}

	repo := repositories.NewWorkerRepository(c.DB)
	data, err := repo.MonthlyReport(id, month)
	if err != nil {
		return serviceError(ctx, err)
	}

	switch ctx.Query("format", "excel") {
	case "pdf":
		filename := fmt.Sprintf("worker_report_%s_%s.pdf", data.Worker.EmployeeCode, month.Format("2006_01"))
		ctx.Set("Content-Type", "application/pdf")
		ctx.Set("Content-Disposition", "attachment; filename="+filename)
		if err := services.WriteMonthlyReportPDF(ctx.Response().BodyWriter(), *data); err != nil {
			return serviceError(ctx, err)
		}
	case "excel":
		filename := fmt.Sprintf("worker_report_%s_%s.xlsx", data.Worker.EmployeeCode, month.Format("2006_01"))
		ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Set("Content-Disposition", "attachment; filename="+filename)
		if err := services.WriteMonthlyReportXLSX(ctx.Response().BodyWriter(), *data); err != nil {
			return serviceError(ctx, err)
		}
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported format, use excel or pdf"})
	}

	return nil
}
