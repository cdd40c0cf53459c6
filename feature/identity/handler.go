package identity

import (
	"errors"

	"identity-reconciler/core/contact"
	"identity-reconciler/core/logger"
	"identity-reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for identity reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the identity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/identify", h.HandleIdentify)
	app.Get("/contacts/:id", h.HandleGetContact)
}

// HandleIdentify reconciles an email and/or phone number.
// @Summary Identify Contact
// @Description Links the observation to an existing identity cluster (creating, linking or merging contacts as needed) and returns the consolidated contact.
// @Tags identity
// @Accept json
// @Produce json
// @Param request body IdentifyRequest true "Email and/or phone number"
// @Success 200 {object} IdentifyResponse "Consolidated contact"
// @Failure 400 {object} map[string]string "Invalid Input"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /identify [post]
func (h *Handler) HandleIdentify(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req IdentifyRequest
	if err := c.BodyParser(&req); err != nil {
		l.Debug("Rejected identify body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	view, err := h.service.Identify(c.UserContext(), req)
	if errors.Is(err, reconcile.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Identify failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(IdentifyResponse{Contact: view})
}

// HandleGetContact returns the consolidated contact a contact id belongs to.
// @Summary Get Contact
// @Description Returns the consolidated view of the cluster containing the contact, resolving secondaries to their primary.
// @Tags identity
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} IdentifyResponse "Consolidated contact"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /contacts/{id} [get]
func (h *Handler) HandleGetContact(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid contact id"})
	}

	view, err := h.service.Contact(c.UserContext(), int64(id))
	if errors.Is(err, contact.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "contact not found"})
	}
	if err != nil {
		l.Error("Contact lookup failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(IdentifyResponse{Contact: view})
}
