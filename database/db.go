package database

import (
	"fmt"

	"fiber-mes/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// OpenDatabaseConnection opens the configured database. The driver is picked
// through DB_DRIVER so deployments can run against postgres, mysql or
// sqlserver. TranslateError is on so unique-index violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func OpenDatabaseConnection() (*gorm.DB, error) {
	gormConfig := &gorm.Config{TranslateError: true}

	switch config.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			config.DBHost, config.DBUser, config.DBPassword, config.DBName, config.DBPort)
		return gorm.Open(postgres.Open(dsn), gormConfig)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.DBUser, config.DBPassword, config.DBHost, config.DBPort, config.DBName)
		return gorm.Open(mysql.Open(dsn), gormConfig)
	case "mssql":
		dsn := "sqlserver://" + config.DBUser + ":" + config.DBPassword + "@" + config.DBHost + ":" + config.DBPort + "?database=" + config.DBName
		return gorm.Open(sqlserver.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", config.DBDriver)
	}
}
