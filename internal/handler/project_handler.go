package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/middleware"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/service"
	"github.com/noah-isme/projecthub-api/internal/utils"
)

// ProjectHandler exposes the proposal lifecycle to students and supervisors.
type ProjectHandler struct {
	service service.ProjectService
	logger  zerolog.Logger
}

// NewProjectHandler constructs a project handler.
func NewProjectHandler(service service.ProjectService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger.With().Str("component", "project_handler").Logger(),
	}
}

// Register wires project routes. createGuards run before project creation,
// typically a rate limiter.
func (h *ProjectHandler) Register(router fiber.Router, createGuards ...fiber.Handler) {
	students := middleware.RequireRole(models.RoleStudent)
	supervisors := middleware.RequireRole(models.RoleSupervisor)
	members := middleware.RequireRole(models.RoleStudent, models.RoleSupervisor)

	create := append([]fiber.Handler{students}, createGuards...)
	router.Post("", append(create, h.create)...)
	router.Get("/requests", members, h.listRequests)
	router.Get("/requests/:id", members, h.get)
	router.Put("/requests/:projectId/accept", supervisors, h.accept)
	router.Put("/requests/:projectId/reject", supervisors, h.reject)
	router.Put("/requests/:projectId/proposal", students, h.uploadProposal)
	router.Get("/accepted", supervisors, h.listAccepted)
}

func (h *ProjectHandler) create(c *fiber.Ctx) error {
	var payload dto.ProjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	project, err := h.service.Create(c.UserContext(), middleware.IdentityFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "create project")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project created", project)
}

func (h *ProjectHandler) listRequests(c *fiber.Ctx) error {
	projects, err := h.service.ListRequests(c.UserContext(), middleware.IdentityFromContext(c), c.Query("status"))
	if err != nil {
		return handleError(c, h.logger, err, "list projects")
	}

	return utils.SendSuccess(c, "projects retrieved", projects)
}

func (h *ProjectHandler) listAccepted(c *fiber.Ctx) error {
	projects, err := h.service.ListAccepted(c.UserContext(), middleware.IdentityFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "list accepted projects")
	}

	return utils.SendSuccess(c, "accepted projects retrieved", projects)
}

func (h *ProjectHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	project, err := h.service.Get(c.UserContext(), middleware.IdentityFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err, "fetch project")
	}

	return utils.SendSuccess(c, "project retrieved", project)
}

func (h *ProjectHandler) accept(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	project, err := h.service.Accept(c.UserContext(), middleware.IdentityFromContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err, "accept project")
	}

	return utils.SendSuccess(c, "project accepted", project)
}

func (h *ProjectHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.service.Reject(c.UserContext(), middleware.IdentityFromContext(c), id); err != nil {
		return handleError(c, h.logger, err, "reject project")
	}

	return utils.SendSuccess(c, "project rejected", fiber.Map{"id": id})
}

func (h *ProjectHandler) uploadProposal(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	project, err := h.service.UploadProposal(c.UserContext(), middleware.IdentityFromContext(c), id, file)
	if err != nil {
		return handleError(c, h.logger, err, "upload proposal")
	}

	return utils.SendSuccess(c, "proposal uploaded", project)
}
