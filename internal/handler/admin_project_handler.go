package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/middleware"
	"github.com/noah-isme/projecthub-api/internal/service"
	"github.com/noah-isme/projecthub-api/internal/utils"
)

// AdminProjectHandler exposes unrestricted project management to admins.
type AdminProjectHandler struct {
	service service.AdminProjectService
	logger  zerolog.Logger
}

// NewAdminProjectHandler constructs the handler.
func NewAdminProjectHandler(service service.AdminProjectService, logger zerolog.Logger) *AdminProjectHandler {
	return &AdminProjectHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_project_handler").Logger(),
	}
}

// Register attaches project admin routes to the router group.
func (h *AdminProjectHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminProjectHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePaging(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}
	supervisorID, err := parseQueryUint(c, "supervisor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid supervisor id")
	}

	req := dto.ProjectListRequest{
		Status:       c.Query("status"),
		StudentID:    studentID,
		SupervisorID: supervisorID,
		Search:       c.Query("search"),
		Page:         page,
		PageSize:     pageSize,
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err, "list projects")
	}

	return utils.OK(c, response.Items, "projects retrieved", response.Pagination)
}

// update passes the raw body through so the patch can be checked against its
// JSON schema before any field is applied.
func (h *AdminProjectHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	project, err := h.service.Update(c.UserContext(), middleware.IdentityFromContext(c), id, c.Body())
	if err != nil {
		return handleError(c, h.logger, err, "update project")
	}

	return utils.SendSuccess(c, "project updated", project)
}

func (h *AdminProjectHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.service.Delete(c.UserContext(), middleware.IdentityFromContext(c), id); err != nil {
		return handleError(c, h.logger, err, "delete project")
	}

	return utils.SendSuccess(c, "project deleted", fiber.Map{"id": id})
}
