package health

import (
	"context"
	"time"

	"identity-reconciler/core/database"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// Feature implements the loader.Feature interface.
type Feature struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewFeature creates the health feature.
func NewFeature(db *gorm.DB, logger *zap.Logger) *Feature {
	return &Feature{db: db, logger: logger}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "health"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	app.Get("/health", f.HandleHealth)
	return nil
}

// HandleHealth reports whether the database is reachable.
// @Summary Health Check
// @Description Pings the database.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string "OK"
// @Failure 503 {object} map[string]string "Database Unreachable"
// @Router /health [get]
func (f *Feature) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	if err := database.Ping(ctx, f.db); err != nil {
		f.logger.Warn("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
