package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"case_strategy_editor/config"
	"case_strategy_editor/db"
	"case_strategy_editor/handlers"
	"case_strategy_editor/middleware"
	"case_strategy_editor/models"
	"case_strategy_editor/services"
	"case_strategy_editor/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.Document{}, &models.ExportRecord{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Storage, export bridge and the pagination surface
	services.InitializeStorage(cfg)
	if err := services.InitializeExports(cfg, db.DB); err != nil {
		log.Fatalf("Failed to initialize PDF export: %v", err)
	}
	stopSurfaces := services.InitializePagination(cfg)
	defer stopSurfaces()

	scheduler := jobs.StartScheduler(db.DB, cfg)
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Editor pages
	e.GET("/", handlers.EditorHandler, middleware.CSPNonce())
	e.GET("/documents/:id", handlers.DocumentEditorHandler, middleware.CSPNonce())

	api := e.Group("/api")
	api.Use(echomiddleware.BodyLimit("10M"))
	{
		api.POST("/generate-pdf", handlers.GeneratePDFHandler, middleware.ExportRateLimiter.Middleware())
		api.POST("/paginate", handlers.PaginateHandler, middleware.PaginateRateLimiter.Middleware())
		api.GET("/geometry", handlers.GeometryHandler)
		api.GET("/exports/:id", handlers.ArchivedExportHandler, middleware.ExportRateLimiter.Middleware())
	}

	documents := api.Group("/documents")
	documents.Use(middleware.DraftRateLimiter.Middleware())
	{
		documents.POST("", handlers.CreateDocumentHandler)
		documents.GET("", handlers.ListDocumentsHandler)
		documents.GET("/:id", handlers.GetDocumentHandler)
		documents.PUT("/:id", handlers.SaveDocumentHandler)
		documents.DELETE("/:id", handlers.DeleteDocumentHandler)
		documents.GET("/:id/pdf", handlers.ExportDocumentHandler, middleware.ExportRateLimiter.Middleware())
	}

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ExportTimeout+5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
