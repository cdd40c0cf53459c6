package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"identity-reconciler/core/config"
	"identity-reconciler/core/contact"
	"identity-reconciler/core/database"
	"identity-reconciler/core/loader"
	"identity-reconciler/core/logger"
	"identity-reconciler/core/metrics"
	"identity-reconciler/core/middleware/auth"
	"identity-reconciler/core/middleware/rayid"
	"identity-reconciler/core/reconcile"
	"identity-reconciler/core/storage"

	"identity-reconciler/feature/export"
	"identity-reconciler/feature/health"
	"identity-reconciler/feature/identity"
	"identity-reconciler/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "identity-reconciler/docs/swagger"
)

// @title Identity Reconciler API
// @version 1.0
// @description Links customer contacts into identity clusters and serves the consolidated identity.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the identity reconciliation server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (Required)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		defer database.Close(db)
		logg = logg.With(zap.String("driver", cfg.Database.Driver))
		if err := contact.EnsureSchema(cmd.Context(), db); err != nil {
			logg.Fatal("Failed to ensure contacts schema", zap.Error(err))
		}
		logg.Info("Connected to contacts database")

		// 4. Metrics and Engine
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		engine := reconcile.NewEngine(
			contact.NewGormStore(db),
			logg,
			cfg.Reconcile,
			reconcile.WithRecorder(metrics.New(registry)),
		)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             cfg.Server.BodyLimit,
		})

		// 6. Initialize Storage (Optional, only exports need it)
		storageCtx, cancelStorage := context.WithTimeout(context.Background(), 5*time.Second)
		objects, err := storage.Connect(storageCtx, cfg.Storage)
		cancelStorage()
		switch {
		case errors.Is(err, storage.ErrNotConfigured):
			logg.Info("Storage endpoint not configured, exports disabled")
		case err != nil:
			logg.Warn("Storage unavailable, exports disabled", zap.Error(err))
		}

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(identity.NewFeature(engine, logg))
		mgr.Register(integrity.NewFeature(db, logg))
		mgr.Register(export.NewFeature(contact.NewGormStore(db), objects, cfg.Storage, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request completed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("ip", c.IP()),
			)
			return err
		})

		// 3. Public routes: docs, health and metrics
		app.Get("/swagger/*", swagger.HandlerDefault)
		_ = health.NewFeature(db, logg).Load(app)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		for _, f := range mgr.Features() {
			logg.Info("Feature", zap.String("name", f.Name()), zap.Bool("enabled", f.IsEnabled()))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			logg.Warn("Shutdown did not complete cleanly", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
