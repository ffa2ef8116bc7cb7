package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rmatrack/backend/internal/database"
	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/services"
)

// Seeds the bootstrap admin account and a few sample customers so a fresh
// install is usable immediately.
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

	userService := services.NewUserService(database.DB)
	customerService := services.NewCustomerService(database.DB)

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme"
	}
	admin, err := userService.EnsureAdmin("admin", "admin@example.com", adminPassword)
	if err != nil {
		logger.Fatal("Failed to ensure admin user", map[string]interface{}{"error": err.Error()})
	}
	if admin != nil {
		logger.Info("Admin user created", map[string]interface{}{"user_id": admin.ID})
	} else {
		logger.Info("Admin user already present", nil)
	}

	samples := []services.CustomerInput{
		{CustomerName: "Acme Manufacturing", ContactName: "Jordan Reyes", ContactEmail: "jordan@acme.example"},
		{CustomerName: "Globex Industrial", ContactName: "Sam Whitfield", ContactEmail: "sam@globex.example"},
		{CustomerName: "Initech Tooling", ContactName: "Riley Park", ContactEmail: "riley@initech.example"},
	}
	for _, input := range samples {
		if _, err := customerService.Create(input); err != nil {
			// Already seeded runs hit the uniqueness check; that's fine.
			logger.Warn("Skipping sample customer", map[string]interface{}{
				"name":   input.CustomerName,
				"reason": err.Error(),
			})
		}
	}

	logger.Info("Seeding completed", nil)
}
