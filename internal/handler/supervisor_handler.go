package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/projecthub-api/internal/service"
	"github.com/noah-isme/projecthub-api/internal/utils"
)

// SupervisorHandler lists the supervisors a student can submit to.
type SupervisorHandler struct {
	service service.SupervisorService
	logger  zerolog.Logger
}

// NewSupervisorHandler constructs the handler.
func NewSupervisorHandler(service service.SupervisorService, logger zerolog.Logger) *SupervisorHandler {
	return &SupervisorHandler{
		service: service,
		logger:  logger.With().Str("component", "supervisor_handler").Logger(),
	}
}

// Register wires supervisor routes.
func (h *SupervisorHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *SupervisorHandler) list(c *fiber.Ctx) error {
	supervisors, err := h.service.List(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "list supervisors")
	}

	return utils.SendSuccess(c, "supervisors retrieved", supervisors)
}
