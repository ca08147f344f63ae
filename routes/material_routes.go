package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupMaterialRoutes(app *fiber.App, db *gorm.DB) {
	materialController := controllers.NewMaterialController(db)
	api := app.Group(config.MAIN_ROUTES+"/materials", middleware.AuthMiddleware)

	api.Get("/", materialController.GetMaterials)
	api.Get("/low-stock", materialController.GetLowStock)
	api.Get("/:id", materialController.GetMaterial)
	api.Post("/", middleware.RequireRole(models.RoleProduction), materialController.CreateMaterial)
	api.Post("/:id/adjust", middleware.RequireRole(models.RoleAdmin), materialController.AdjustMaterial)
}
