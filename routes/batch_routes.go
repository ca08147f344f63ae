package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBatchRoutes(app *fiber.App, db *gorm.DB) {
	batchController := controllers.NewBatchController(db)
	api := app.Group(config.MAIN_ROUTES+"/batches", middleware.AuthMiddleware)

	api.Get("/", batchController.GetBatches)
	api.Get("/stats/overview", batchController.GetStatsOverview)
	api.Get("/code/:code", batchController.GetBatchByCode)
	api.Get("/:id", batchController.GetBatch)
	api.Post("/", middleware.RequireRole(models.RoleProduction), batchController.CreateBatch)
	api.Put("/:id/status", middleware.RequireRole(models.RoleProduction), batchController.UpdateBatchStatus)
	api.Post("/:id/photos", middleware.RequireRole(models.RoleProduction), batchController.AppendBatchPhotos)
	api.Post("/:id/quality-checks", middleware.RequireRole(models.RoleProduction), batchController.AppendQualityCheck)
}
