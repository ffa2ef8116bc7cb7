package routes

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/controllers"
	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/middleware"
	"github.com/rmatrack/backend/internal/services"
	"github.com/rmatrack/backend/internal/storage"
)

// newUndoStore picks Redis when REDIS_ADDR is configured and falls back to
// the in-process store otherwise.
func newUndoStore() services.UndoStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return services.NewMemoryUndoStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	logger.Info("Using Redis undo store", map[string]interface{}{"addr": addr})
	return services.NewRedisUndoStore(client, 30*time.Minute)
}

// newFileStore picks MinIO when MINIO_ENDPOINT is configured and falls back
// to local disk otherwise.
func newFileStore() (storage.FileStore, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		dir := os.Getenv("UPLOAD_DIR")
		if dir == "" {
			dir = "uploads"
		}
		return storage.NewLocalStore(dir)
	}
	logger.Info("Using MinIO attachment store", map[string]interface{}{"endpoint": endpoint})
	return storage.NewMinioStore(context.Background(), storage.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    os.Getenv("MINIO_BUCKET"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	})
}

// SetupRoutes wires services, controllers and the API surface.
func SetupRoutes(r *gin.Engine, db *gorm.DB) error {
	fileStore, err := newFileStore()
	if err != nil {
		return err
	}

	// Services
	undoService := services.NewUndoService(db, newUndoStore())
	notificationService := services.NewNotificationService(db, services.NewSenderFromEnv())
	rmaService := services.NewRMAService(db, undoService, notificationService)
	creditService := services.NewCreditService(db, undoService)
	ownerService := services.NewOwnerService(db, notificationService)
	dispositionService := services.NewDispositionService(db)
	attachmentService := services.NewAttachmentService(db, fileStore)
	reminderService := services.NewReminderService(db, notificationService)
	metricsService := services.NewMetricsService(db)
	userService := services.NewUserService(db)
	customerService := services.NewCustomerService(db)

	// Controllers
	authController := controllers.NewAuthController(userService)
	rmaController := controllers.NewRMAController(rmaService, ownerService, undoService)
	creditController := controllers.NewCreditController(creditService, metricsService)
	lineController := controllers.NewLineController(dispositionService)
	attachmentController := controllers.NewAttachmentController(attachmentService)
	customerController := controllers.NewCustomerController(customerService)
	userController := controllers.NewUserController(userService)
	metricsController := controllers.NewMetricsController(metricsService)
	notificationController := controllers.NewNotificationController(reminderService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/refresh", middleware.AuthMiddleware(), authController.RefreshToken)
			auth.POST("/change-password", middleware.AuthMiddleware(), authController.ChangePassword)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			rmas := protected.Group("/rmas")
			{
				rmas.GET("", rmaController.List)
				rmas.POST("", rmaController.Create)
				rmas.GET("/status-options", rmaController.StatusOptions)
				rmas.GET("/:id", rmaController.Get)
				rmas.POST("/:id/status", rmaController.ChangeStatus)
				rmas.POST("/:id/acknowledge", rmaController.Acknowledge)
				rmas.PUT("/:id/notes", rmaController.UpdateNotes)
				rmas.GET("/:id/history", rmaController.StatusHistory)
				rmas.GET("/:id/notes-history", rmaController.NotesHistory)

				rmas.GET("/:id/owners", rmaController.ListOwners)
				rmas.POST("/:id/owners", rmaController.AssignOwners)
				rmas.DELETE("/:id/owners/:userId", rmaController.RemoveOwner)
				rmas.PUT("/:id/owners/:userId/primary", rmaController.SetPrimaryOwner)

				rmas.GET("/:id/lines", lineController.List)
				rmas.POST("/:id/lines", lineController.Add)
				rmas.PUT("/:id/lines/:lineId", lineController.Update)
				rmas.DELETE("/:id/lines/:lineId", lineController.Delete)
				rmas.POST("/:id/lines/:lineId/disposition", lineController.SetDisposition)

				rmas.GET("/:id/attachments", attachmentController.List)
				rmas.POST("/:id/attachments", attachmentController.Upload)
				rmas.GET("/:id/attachments/:attachmentId", attachmentController.Download)
				rmas.DELETE("/:id/attachments/:attachmentId", attachmentController.Delete)

				rmas.POST("/:id/credit/approve", creditController.Approve)
				rmas.POST("/:id/credit/reject", creditController.Reject)
				rmas.POST("/:id/credit/reopen", creditController.Reopen)
				rmas.POST("/:id/credit/issue", creditController.Issue)
				rmas.POST("/:id/credit/toggle", creditController.ToggleApproval)
				rmas.GET("/:id/credit/history", creditController.History)
			}

			protected.POST("/undo", rmaController.Undo)

			customers := protected.Group("/customers")
			{
				customers.GET("", customerController.List)
				customers.GET("/:id", customerController.Get)
				customers.POST("", customerController.Create)
				customers.PUT("/:id", customerController.Update)
			}

			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
				users.GET("", userController.List)
				users.GET("/owners", userController.Owners)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("/preferences", notificationController.GetPreferences)
				notifications.PUT("/preferences", notificationController.UpdatePreferences)
			}

			protected.GET("/metrics", metricsController.Overview)
			protected.GET("/credits/dashboard", creditController.Dashboard)

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.DELETE("/rmas/:id", rmaController.Delete)
				admin.DELETE("/rmas/:id/history/:entryId", rmaController.DeleteStatusHistoryEntry)
				admin.DELETE("/customers/:id", customerController.Delete)
				admin.POST("/users", userController.Create)
				admin.PUT("/users/:id/role", userController.SetRole)
				admin.DELETE("/users/:id", userController.Delete)
				admin.POST("/reminders/run", notificationController.TriggerSweep)
			}
		}
	}

	return nil
}
