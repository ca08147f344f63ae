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

type FormulationController struct {
	DB *gorm.DB
}

func NewFormulationController(DB *gorm.DB) *FormulationController {
	return &FormulationController{DB: DB}
}

type ingredientInput struct {
	MaterialID   types.SnowflakeID `json:"material_id" validate:"required"`
	MaterialName string            `json:"material_name"`
	Percentage   decimal.Decimal   `json:"percentage"`
	Unit         string            `json:"unit" validate:"required"`
	Notes        string            `json:"notes"`
}

func (c *FormulationController) CreateFormulation(ctx *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name" validate:"required,min=2"`
		ProductName string `json:"product_name" validate:"required,min=2"`
		Remarks     string `json:"remarks"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	formulation := models.Formulation{
		ID:          types.SnowflakeID(idgen.GenerateID()),
		Name:        input.Name,
		ProductName: input.ProductName,
		Remarks:     input.Remarks,
		CreatedBy:   currentUserID(ctx),
	}

	repo := repositories.NewFormulationRepository(c.DB)
	if err := repo.Create(&formulation); err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"formulation": formulation}})
}

func (c *FormulationController) GetFormulations(ctx *fiber.Ctx) error {
	repo := repositories.NewFormulationRepository(c.DB)
	formulations, err := repo.List()
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"formulations": formulations}})
}

func (c *FormulationController) GetFormulation(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid formulation id"})
	}

	repo := repositories.NewFormulationRepository(c.DB)
	formulation, err := repo.Get(id)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"formulation": formulation}})
}

// CreateVersion authors a new draft version with an ordered ingredient list.
func (c *FormulationController) CreateVersion(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid formulation id"})
	}

	var input struct {
		Ingredients []ingredientInput `json:"ingredients" validate:"required,min=1,dive"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ingredients := make([]models.Ingredient, 0, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		if ing.Percentage.IsNegative() {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ingredient composition must not be negative"})
		}
		ingredients = append(ingredients, models.Ingredient{
			MaterialID:   ing.MaterialID,
			MaterialName: ing.MaterialName,
			Percentage:   ing.Percentage,
			Unit:         ing.Unit,
			Notes:        ing.Notes,
		})
	}

	repo := repositories.NewFormulationRepository(c.DB)
	version, err := repo.CreateVersion(id, ingredients, currentUserID(ctx))
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"version": version}})
}

// LockVersion freezes a draft. Locked versions are immutable and the only
// ones eligible for production.
func (c *FormulationController) LockVersion(ctx *fiber.Ctx) error {
	versionID, err := parseSnowflakeParam(ctx, "versionId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid version id"})
	}

	repo := repositories.NewFormulationRepository(c.DB)
	version, err := repo.Lock(versionID, currentUserID(ctx))
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"version": version}})
}

// RollbackVersion copies a historical version into a new draft.
func (c *FormulationController) RollbackVersion(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid formulation id"})
	}

	versionNumber, err := strconv.Atoi(ctx.Params("version"))
	if err != nil || versionNumber < 1 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid version number"})
	}

	repo := repositories.NewFormulationRepository(c.DB)
	version, err := repo.Rollback(id, versionNumber, currentUserID(ctx))
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"version": version}})
}
