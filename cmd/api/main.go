package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"alfredoptarigan/resumeai/internal/config"
	"alfredoptarigan/resumeai/internal/handlers"
	"alfredoptarigan/resumeai/internal/logger"
	"alfredoptarigan/resumeai/internal/repositories"
	"alfredoptarigan/resumeai/internal/services"
	"alfredoptarigan/resumeai/internal/wizard"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	_, flush := logger.Install(cfg.Log.Level, cfg.Log.Format)
	defer flush()
	log := zap.S()
	log.Infow("Config loaded successfully", "env", cfg.Server.Env)

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalw("Failed to initialize database", "error", err)
	}

	// Initialize repositories
	runRepo := repositories.NewDemoRunRepository(db)
	log.Info("Repositories initialized successfully")

	// Load demo content
	content, err := wizard.LoadContent(cfg.Content.Path)
	if err != nil {
		log.Fatalw("Failed to load demo content", "path", cfg.Content.Path, "error", err)
	}
	log.Infow("Demo content loaded", "keywords", len(content.Keywords), "milestones", len(content.Milestones))

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewMetrics(registry)

	// Initialize services
	pdfParser := services.NewPDFParserService()
	inspector := services.NewDocumentInspector(pdfParser, cfg.Storage.MaxFileSize)
	sessions := services.NewSessionManager(content, runRepo, metrics, services.SessionOptions{
		TTL:           cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
		MaxSessions:   cfg.Session.MaxSessions,
		Timing:        cfg.WizardTiming(),
	})
	log.Info("Services initialized successfully")

	// Start session sweeper
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions.Start(ctx)

	// Initialize handlers
	validate := validator.New(validator.WithRequiredStructEnabled())
	demoHandler := handlers.NewDemoHandler(sessions, inspector, metrics, validate)
	keywordsHandler := handlers.NewKeywordsHandler(wizard.NewMatcher(content.Keywords), validate)
	statsHandler := handlers.NewStatsHandler(runRepo)
	log.Info("Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ResumeAI Demo API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 64*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	handlers.RegisterRoutes(app.Group("/api/v1"), demoHandler, keywordsHandler, statsHandler, registry)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ResumeAI Demo API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/demo/sessions",
				"GET /api/v1/demo/sessions/:id",
				"DELETE /api/v1/demo/sessions/:id",
				"POST /api/v1/demo/sessions/:id/document",
				"PUT /api/v1/demo/sessions/:id/job-description",
				"POST /api/v1/demo/sessions/:id/process",
				"POST /api/v1/demo/sessions/:id/stage",
				"POST /api/v1/demo/sessions/:id/reset",
				"POST /api/v1/demo/keywords",
				"GET /api/v1/demo/stats",
				"GET /api/v1/metrics",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Errorw("Server forced to shutdown", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infow("Server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		log.Errorw("Failed to start server", "error", err)
	}

	cancel()
	sessions.Stop()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}
