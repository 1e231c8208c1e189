package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gaia/docs"
	"gaia/internal/alert"
	"gaia/internal/config"
	"gaia/internal/database"
	"gaia/internal/database/migration"
	handlers "gaia/internal/http/handler"
	"gaia/internal/http/middleware"
	"gaia/internal/otel"
	"gaia/internal/repository/postgres"
	"gaia/internal/scheduler"
	"gaia/internal/service"
	"gaia/internal/storage"
)

// @title Gaia Evidence API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("failed to shut down tracing: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Initialize repositories and services
	sceneRepo := postgres.NewScenePostgres(db)
	artifactRepo := postgres.NewArtifactPostgres(db)
	jobRepo := postgres.NewJobPostgres(db)
	packRepo := postgres.NewPackPostgres(db)

	notifier := alert.NewWebhook(cfg.Alert)

	sceneSvc := service.NewSceneService(objStore, sceneRepo)
	artifactSvc := service.NewArtifactService(objStore, artifactRepo, sceneRepo, notifier)
	jobSvc := service.NewJobService(jobRepo)
	packSvc := service.NewPackService(objStore, packRepo, sceneRepo, artifactRepo, jobRepo, nil)
	archiveSvc := service.NewArchiveService(objStore, sceneRepo)

	// Run recurring monitoring jobs in the background when enabled
	var executor *scheduler.Executor
	if cfg.Scheduler.Enabled {
		watchList, err := scheduler.LoadWatchList(cfg.Scheduler.MissionsFile)
		if err != nil {
			log.Fatalf("failed to load mission watch list: %v", err)
		}
		defer watchList.Close()

		executor = scheduler.NewExecutor(ctx, jobSvc, packSvc, cfg.Scheduler.MaxConcurrent)
		sched := scheduler.New(watchList, jobSvc, jobRepo, executor, cfg.Scheduler.Interval)
		go sched.Run(ctx)
	} else {
		log.Println(`{"level":"info","msg":"scheduler disabled"}`)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// otelfiber creates a server span per request and propagates trace context
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, handlers.Services{
		Scenes:    sceneSvc,
		Artifacts: artifactSvc,
		Jobs:      jobSvc,
		Packs:     packSvc,
		Archive:   archiveSvc,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("failed to shut down server: %v", err)
		}
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	// Let in-flight scheduled jobs finish before exiting
	if executor != nil {
		executor.Wait()
	}
}
