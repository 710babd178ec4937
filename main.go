package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campus-coop/coop-queue-api/config"
	"github.com/campus-coop/coop-queue-api/controllers"
	"github.com/campus-coop/coop-queue-api/logging"
	"github.com/campus-coop/coop-queue-api/middleware"
	"github.com/campus-coop/coop-queue-api/models"
	"github.com/campus-coop/coop-queue-api/services"
)

func main() {
	log.Println("Starting Campus Co-op Queue API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.InventoryItem{},
		&models.WeeklySchedule{},
		&models.SpecialHours{},
		&models.Setting{},
		&models.QueueCounter{},
		&models.QueueReset{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if err := seedDefaultSchedule(); err != nil {
		log.Fatalf("Failed to seed weekly schedule: %v", err)
	}

	initServices()

	router := setupAppRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initServices wires the queue core: clock, settings, hours gate, queue
// allocator, wait-time estimator and the order lifecycle service.
func initServices() {
	db := config.GetDB()
	logger := logging.GetSugaredLogger()
	clock := services.GetClock()

	settings := services.InitSettingsService(db)
	hours := services.InitHoursService(db, clock)
	queue := services.InitQueueService(db)
	waitTime := services.InitWaitTimeService(db, clock, settings)
	notifier := services.InitNotificationService(services.NewLogNotificationService(logger))
	services.InitOrderService(db, clock, hours, queue, waitTime, settings, notifier, logger)
}

// setupAppRouter builds the full application router
func setupAppRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/hours", controllers.HoursStatus)
		v1.GET("/queue/board", controllers.QueueBoard)

		// Authenticated endpoints
		auth := v1.Group("")
		auth.Use(middleware.EnsureValidToken(cfg))
		{
			auth.POST("/students", controllers.CreateStudent)
			auth.GET("/students/me", controllers.GetMyProfile)

			auth.POST("/orders", controllers.CreateOrder)
			auth.GET("/orders", controllers.ListOrders)
			auth.GET("/orders/:id", controllers.GetOrder)
			auth.GET("/orders/:id/wait-time", controllers.GetWaitTime)
			auth.POST("/orders/:id/check-in", controllers.CheckInOrder)
			auth.POST("/orders/:id/cancel", controllers.CancelOrder)

			// Staff endpoints (role enforced in the handlers)
			auth.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
			auth.POST("/queue/reset", controllers.ResetQueue)
			auth.PUT("/schedule/:weekday", controllers.UpsertWeeklySchedule)
			auth.POST("/schedule/special", controllers.UpsertSpecialHours)
		}
	}

	return router
}

// seedDefaultSchedule creates the initial weekly schedule on first boot:
// Monday through Friday 08:00-17:00 with a 12:00-13:00 lunch break.
func seedDefaultSchedule() error {
	db := config.GetDB()

	var count int64
	if err := db.Model(&models.WeeklySchedule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	lunchStart, lunchEnd := "12:00", "13:00"
	for weekday := 0; weekday <= 6; weekday++ {
		row := models.WeeklySchedule{
			Weekday: weekday,
			IsOpen:  weekday >= 1 && weekday <= 5,
		}
		if row.IsOpen {
			row.OpenTime = "08:00"
			row.CloseTime = "17:00"
			row.LunchStart = &lunchStart
			row.LunchEnd = &lunchEnd
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded default weekly schedule")
	return nil
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Campus Co-op Queue API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
