package main

import (
	"context"
	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	"lms/middleware"
	courseRoutes "lms/routers/courseRoutes"
	"lms/services/grading"
	"lms/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Grading services share one aggregator so every grading path
	// serializes on the same per-key locks
	store := database.Database
	aggregator := grading.NewAggregator(store, store, store, store, config.AppConfig.AggregationTimeout)
	recorder := grading.NewRecorder(store, store, store, aggregator).
		WithNotifier(utils.NewGradeMailer(store, config.AppConfig.SendgridAPIKey, config.AppConfig.EmailSender))
	rebuilder := grading.NewRebuilder(store, aggregator)
	controllers.InitGrading(recorder, rebuilder)

	if spec := config.AppConfig.PerformanceRebuildCron; spec != "" {
		scheduler, err := utils.InitializePerformanceScheduler(spec, func(ctx context.Context, since time.Time) error {
			result, err := rebuilder.RebuildActive(ctx, since)
			if err != nil {
				return err
			}
			log.Printf("[PERFORMANCE-SCHEDULER] %d rebuilt, %d failed", result.Rebuilt, result.Failed)
			return nil
		})
		if err != nil {
			log.Fatalf("Invalid PERFORMANCE_REBUILD_CRON %q: %v", spec, err)
		}
		defer scheduler.Stop()
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	app.Use(middleware.RequestID)

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:reqid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)

	go func() {
		log.Printf("Server is running on port %s", config.AppConfig.Port)
		if err := app.Listen(":" + config.AppConfig.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
