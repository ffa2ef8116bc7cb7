package main

import (
	"github.com/joho/godotenv"

	"github.com/rmatrack/backend/internal/database"
	"github.com/rmatrack/backend/internal/logger"
)

func main() {
	logger.Initialize()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	if err := database.Connect(); err != nil {
		logger.Fatal("Database connection failed", map[string]interface{}{"error": err.Error()})
	}
	if err := database.Migrate(database.DB); err != nil {
		logger.Fatal("Migration failed", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Migration completed", nil)
}
