package controllers

import (
	"strconv"

	"fiber-mes/controllers/idgen"
	"fiber-mes/models"
	"fiber-mes/repositories"
	"fiber-mes/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MaterialController struct {
	DB *gorm.DB
}

func NewMaterialController(DB *gorm.DB) *MaterialController {
	return &MaterialController{DB: DB}
}

func parseSnowflakeParam(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	raw := ctx.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return types.SnowflakeID(id), nil
}

func (c *MaterialController) CreateMaterial(ctx *fiber.Ctx) error {
	var materialInput struct {
		Code         string          `json:"code" validate:"required,min=2"`
		Name         string          `json:"name" validate:"required,min=2"`
		Unit         string          `json:"unit" validate:"required"`
		CurrentQty   decimal.Decimal `json:"current_qty"`
		MinThreshold decimal.Decimal `json:"min_threshold"`
		Remarks      string          `json:"remarks"`
	}
	if err := ctx.BodyParser(&materialInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(materialInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if materialInput.CurrentQty.IsNegative() || materialInput.MinThreshold.IsNegative() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantities must not be negative"})
	}

	userID := currentUserID(ctx)
	material := models.Material{
		ID:           types.SnowflakeID(idgen.GenerateID()),
		Code:         materialInput.Code,
		Name:         materialInput.Name,
		Unit:         materialInput.Unit,
		CurrentQty:   materialInput.CurrentQty,
		MinThreshold: materialInput.MinThreshold,
		Remarks:      materialInput.Remarks,
		CreatedBy:    userID,
		UpdatedBy:    userID,
	}

	repo := repositories.NewStockRepository(c.DB)
	if err := repo.Create(&material); err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"material": material}})
}

func (c *MaterialController) GetMaterials(ctx *fiber.Ctx) error {
	repo := repositories.NewStockRepository(c.DB)
	materials, err := repo.List()
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"materials": materials}})
}

func (c *MaterialController) GetLowStock(ctx *fiber.Ctx) error {
	repo := repositories.NewStockRepository(c.DB)
	materials, err := repo.LowStock()
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"materials": materials}})
}

func (c *MaterialController) GetMaterial(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid material id"})
	}

	repo := repositories.NewStockRepository(c.DB)
	material, err := repo.Get(id)
	if err != nil {
		return serviceError(ctx, err)
	}

	movements, err := repo.Movements(id)
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"material": material, "movements": movements},
	})
}

// AdjustMaterial applies a signed stock correction; manual intake uses a
// positive delta, write-offs a negative one.
func (c *MaterialController) AdjustMaterial(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid material id"})
	}

	var input struct {
		Delta  decimal.Decimal `json:"delta" validate:"required"`
		Reason string          `json:"reason" validate:"required,min=3"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewStockRepository(c.DB)
	material, err := repo.Adjust(id, input.Delta, input.Reason, currentUserID(ctx))
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"material": material}})
}
