package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"
	"fiber-mes/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWorkerRoutes(app *fiber.App, db *gorm.DB) {
	workerController := controllers.NewWorkerController(db)
	api := app.Group(config.MAIN_ROUTES+"/workers", middleware.AuthMiddleware)

	api.Get("/", workerController.GetWorkers)
	api.Get("/:id", workerController.GetWorker)
	api.Get("/:id/efficiency", workerController.GetWorkerEfficiency)
	api.Get("/:id/report", workerController.ExportMonthlyReport)
	api.Post("/", middleware.RequireRole(models.RoleAdmin), workerController.CreateWorker)
	api.Put("/:id", middleware.RequireRole(models.RoleAdmin), workerController.UpdateWorker)
	api.Post("/:id/feedback", middleware.RequireRole(models.RoleProduction), workerController.RecordFeedback)
}
