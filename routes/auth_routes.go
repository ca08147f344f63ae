package routes

import (
	"fiber-mes/config"
	"fiber-mes/controllers"
	"fiber-mes/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controllers.NewAuthController(db)

	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Post("/login", authController.Login)

	protected := app.Group(config.MAIN_ROUTES+"/auth", middleware.AuthMiddleware)
	protected.Get("/me", authController.Me)
	protected.Post("/logout", authController.Logout)
}
