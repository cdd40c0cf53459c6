package export

import (
	"identity-reconciler/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for cluster snapshots.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/export")
	group.Post("/", h.HandleExport)
	group.Get("/", h.HandleList)
	group.Get("/:name", h.HandleDownload)
}

// HandleExport writes a snapshot of every cluster to object storage.
// @Summary Export Clusters
// @Description Uploads the consolidated view of every cluster as one JSON document.
// @Tags export
// @Produce json
// @Success 200 {object} Result "Upload Result"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting cluster export")

	res, err := h.service.Export(c.UserContext())
	if err != nil {
		l.Error("Cluster export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// HandleList lists stored snapshots.
// @Summary List Snapshots
// @Description Lists snapshot object keys, newest first.
// @Tags export
// @Produce json
// @Success 200 {object} map[string]interface{} "Snapshot Keys"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	keys, err := h.service.List(c.UserContext())
	if err != nil {
		l.Error("Snapshot listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"snapshots": keys})
}

// HandleDownload streams one snapshot.
// @Summary Download Snapshot
// @Description Streams a stored snapshot by file name.
// @Tags export
// @Produce json
// @Param name path string true "Snapshot file name"
// @Success 200 {object} Snapshot "Snapshot"
// @Failure 400 {object} map[string]string "Invalid Name"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export/{name} [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := c.Params("name")

	reader, err := h.service.Open(c.UserContext(), name)
	if err != nil {
		l.Warn("Snapshot download failed", zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendStream(reader)
}
