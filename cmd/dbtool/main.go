// Command dbtool creates the parcelshare database when it is missing and
// migrates its schema.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"parcelshare/cmd"
	"parcelshare/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := createDbIfNotExists(configs); err != nil {
		log.Fatalf("create database: %v", err)
	}

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("connection to postgres through gorm: %v", err)
	}
	if err := gormDB.AutoMigrate(postgres.Models()...); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
	log.Infof("database %s is ready", configs.DBName)
}

func createDbIfNotExists(configs cmd.Config) error {
	db, err := sql.Open("postgres", configs.MaintenanceDSN())
	if err != nil {
		return fmt.Errorf("open maintenance connection: %w", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow(`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, configs.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("look up database: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(configs.DBName)); err != nil {
		return fmt.Errorf("create database %s: %w", configs.DBName, err)
	}
	return nil
}
