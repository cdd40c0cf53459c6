package integrity

import (
	"identity-reconciler/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/clusters", h.HandleClusterCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs the schema and cluster invariant checks.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := make(map[string]interface{})

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if clusters, err := h.service.CheckClusters(c.UserContext()); err != nil {
		report["clusters"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["clusters"] = clusters
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks the contacts table schema.
// @Summary Check Schema
// @Description Checks if the contacts table matches the expected model (columns, types).
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleClusterCheck checks and optionally fixes cluster invariants.
// @Summary Check Clusters
// @Description Reports secondaries without a link, dangling or chained links and linked primaries. Optionally repairs them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Repair violations"
// @Success 200 {object} map[string]interface{} "Cluster Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/clusters [get]
func (h *Handler) HandleClusterCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"
	ctx := c.UserContext()

	report, err := h.service.CheckClusters(ctx)
	if err != nil {
		l.Error("Cluster check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Healthy {
		l.Warn("Cluster invariant violations detected", zap.Int("issues", len(report.Issues)))

		if fix {
			l.Info("Attempting to fix cluster violations")
			fixed, err := h.service.FixClusters(ctx)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix clusters",
					"details": err.Error(),
					"issues":  report.Issues,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  fixed,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "checked",
		"report": report,
	})
}
