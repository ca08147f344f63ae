package main

import (
	"fmt"
	"log"

	"fiber-mes/config"
	"fiber-mes/controllers/idgen"
	"fiber-mes/database"
	"fiber-mes/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()

	db, err := database.OpenDatabaseConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db)
	routes.SetupMaterialRoutes(app, db)
	routes.SetupFormulationRoutes(app, db)
	routes.SetupBatchRoutes(app, db)
	routes.SetupWorkerRoutes(app, db)

	port := config.APP_PORT
	fmt.Println("Server listening on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
