package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"github.com/rmatrack/backend/internal/database"
	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/services"
)

// One-shot reminder sweep, intended for cron.
func main() {
	logger.Initialize()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	if err := database.Connect(); err != nil {
		logger.Fatal("Database connection failed", map[string]interface{}{"error": err.Error()})
	}

	notifier := services.NewNotificationService(database.DB, services.NewSenderFromEnv())
	reminders := services.NewReminderService(database.DB, notifier)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := reminders.Sweep(ctx, time.Now())
	if err != nil {
		logger.Fatal("Reminder sweep failed", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Reminder sweep finished", map[string]interface{}{
		"checked":  result.UsersChecked,
		"notified": result.UsersNotified,
		"flagged":  result.RMAsFlagged,
	})
}
