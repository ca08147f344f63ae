package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupFormulationRoutes(app *fiber.App, db *gorm.DB) {
	formulationController := controllers.NewFormulationController(db)
	api := app.Group(config.MAIN_ROUTES+"/formulations", middleware.AuthMiddleware)

	api.Get("/", formulationController.GetFormulations)
	api.Get("/:id", formulationController.GetFormulation)
	api.Post("/", middleware.RequireRole(models.RoleProduction), formulationController.CreateFormulation)
	api.Post("/:id/versions", middleware.RequireRole(models.RoleProduction), formulationController.CreateVersion)
	api.Post("/:id/versions/:versionId/lock", middleware.RequireRole(models.RoleAdmin), formulationController.LockVersion)
	api.Post("/:id/rollback/:version", middleware.RequireRole(models.RoleProduction), formulationController.RollbackVersion)
}
