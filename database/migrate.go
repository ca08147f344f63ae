package database

import (
	"fiber-mes/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoginLog{},
		&models.Material{},
		&models.StockMovement{},
		&models.Formulation{},
		&models.FormulationVersion{},
		&models.Ingredient{},
		&models.Batch{},
		&models.BatchWorker{},
		&models.BatchMaterial{},
		&models.BatchPhoto{},
		&models.QualityCheck{},
		&models.Worker{},
		&models.WorkerFeedback{},
		&models.WorkerEfficiency{},
	)
}
