package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/projecthub-api/internal/service"
	"github.com/noah-isme/projecthub-api/internal/utils"
)

// AdminOverviewHandler exposes the dashboard counters.
type AdminOverviewHandler struct {
	service service.AdminOverviewService
	logger  zerolog.Logger
}

// NewAdminOverviewHandler constructs the handler.
func NewAdminOverviewHandler(service service.AdminOverviewService, logger zerolog.Logger) *AdminOverviewHandler {
	return &AdminOverviewHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_overview_handler").Logger(),
	}
}

// Register attaches the counter routes to the admin group.
func (h *AdminOverviewHandler) Register(router fiber.Router) {
	router.Get("/total-projects", h.totalProjects)
	router.Get("/total-supervisors", h.totalSupervisors)
	router.Get("/total-students", h.totalStudents)
	router.Get("/overview", h.overview)
}

func (h *AdminOverviewHandler) totalProjects(c *fiber.Ctx) error {
	total, err := h.service.TotalProjects(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "count projects")
	}
	return utils.SendSuccess(c, "total projects", total)
}

func (h *AdminOverviewHandler) totalSupervisors(c *fiber.Ctx) error {
	total, err := h.service.TotalSupervisors(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "count supervisors")
	}
	return utils.SendSuccess(c, "total supervisors", total)
}

func (h *AdminOverviewHandler) totalStudents(c *fiber.Ctx) error {
	total, err := h.service.TotalStudents(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "count students")
	}
	return utils.SendSuccess(c, "total students", total)
}

func (h *AdminOverviewHandler) overview(c *fiber.Ctx) error {
	summary, err := h.service.Overview(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "load overview")
	}
	return utils.SendSuccess(c, "overview", summary)
}
