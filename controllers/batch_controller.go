package controllers

import (
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

type BatchController struct {
	DB      *gorm.DB
	service *services.BatchService
}

func NewBatchController(DB *gorm.DB) *BatchController {
	service := services.NewBatchService(
		repositories.NewFormulationRepository(DB),
		repositories.NewStockRepository(DB),
		repositories.NewBatchRepository(DB),
		repositories.NewWorkerRepository(DB),
	)
	service.Log = config.GetLogger()
	if notifier := services.NewStockAlertNotifier(config.GetLogger()); notifier != nil {
		service.Notifier = notifier
	}
	return &BatchController{DB: DB, service: service}
}

func (c *BatchController) CreateBatch(ctx *fiber.Ctx) error {
	var input struct {
		ProductName          string              `json:"product_name" validate:"required,min=2"`
		FormulationVersionID types.SnowflakeID   `json:"formulation_version_id" validate:"required"`
		BatchSize            decimal.Decimal     `json:"batch_size" validate:"required"`
		Unit                 string              `json:"unit"`
		Workers              []types.SnowflakeID `json:"workers"`
		Shift                string              `json:"shift"`
		StartTime            time.Time           `json:"start_time"`
		Notes                string              `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	batch, err := c.service.Create(services.CreateBatchInput{
		ProductName:          input.ProductName,
		FormulationVersionID: input.FormulationVersionID,
		BatchSize:            input.BatchSize,
		Unit:                 input.Unit,
		WorkerIDs:            input.Workers,
		Shift:                input.Shift,
		StartTime:            input.StartTime,
		Notes:                input.Notes,
		SupervisorID:         currentUserID(ctx),
	})
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"batch": batch}})
}

func (c *BatchController) GetBatches(ctx *fiber.Ctx) error {
	filters := repositories.BatchFilters{
		Status:      ctx.Query("status"),
		ProductName: ctx.Query("product_name"),
	}
	filters.SupervisorID = ctx.QueryInt("supervisor_id", 0)
	if from := ctx.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := ctx.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.AddDate(0, 0, 1)
			filters.DateTo = &end
		}
	}

	repo := repositories.NewBatchRepository(c.DB)
	batches, err := repo.List(filters)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batches": batches}})
}

func (c *BatchController) GetBatch(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	repo := repositories.NewBatchRepository(c.DB)
	batch, err := repo.Get(id)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batch": batch}})
}

// GetBatchByCode is the traceability lookup behind the printed QR code.
func (c *BatchController) GetBatchByCode(ctx *fiber.Ctx) error {
	batch, err := c.service.Resolve(ctx.Params("code"))
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batch": batch}})
}

func (c *BatchController) UpdateBatchStatus(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var input struct {
		Status  string     `json:"status" validate:"required"`
		EndTime *time.Time `json:"end_time"`
		Notes   string     `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	status, err := models.ParseBatchStatus(input.Status)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	batch, err := c.service.UpdateStatus(id, status, input.EndTime, input.Notes, currentUserID(ctx))
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batch": batch}})
}

// AppendBatchPhotos attaches externally stored photo URLs to a batch.
func (c *BatchController) AppendBatchPhotos(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var input struct {
		PhotoType string   `json:"photo_type" validate:"required"`
		URLs      []string `json:"urls" validate:"required,min=1"`
		Notes     string   `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewBatchRepository(c.DB)
	userID := currentUserID(ctx)
	for _, url := range input.URLs {
		photo := models.BatchPhoto{
			BatchID:   id,
			PhotoType: input.PhotoType,
			URL:       url,
			Notes:     input.Notes,
			CreatedBy: userID,
			CreatedAt: time.Now(),
		}
		if err := repo.AppendPhoto(&photo); err != nil {
			return serviceError(ctx, err)
		}
	}

	batch, err := repo.Get(id)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batch": batch}})
}

func (c *BatchController) AppendQualityCheck(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid batch id"})
	}

	var input struct {
		CheckType string `json:"check_type" validate:"required"`
		Result    string `json:"result" validate:"required"`
		Notes     string `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	check := models.QualityCheck{
		BatchID:   id,
		CheckType: input.CheckType,
		Result:    input.Result,
		Notes:     input.Notes,
		CheckedBy: currentUserID(ctx),
		CreatedAt: time.Now(),
	}

	repo := repositories.NewBatchRepository(c.DB)
	if err := repo.AppendQualityCheck(&check); err != nil {
		return serviceError(ctx, err)
	}

	batch, err := repo.Get(id)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"batch": batch}})
}

func (c *BatchController) GetStatsOverview(ctx *fiber.Ctx) error {
	var dateFrom, dateTo *time.Time
	if from := ctx.Query("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			dateFrom = &t
		}
	}
	if to := ctx.Query("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.AddDate(0, 0, 1)
			dateTo = &end
		}
	}

	repo := repositories.NewBatchRepository(c.DB)
	stats, distribution, err := repo.StatsOverview(dateFrom, dateTo)
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"stats":               stats,
			"status_distribution": distribution,
		},
	})
}
