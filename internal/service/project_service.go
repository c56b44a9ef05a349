package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/middleware"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/observability"
	"github.com/noah-isme/projecthub-api/internal/repository"
)

const defaultProposalMaxBytes int64 = 10 * 1024 * 1024

var allowedProposalTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/msword",
	"text/plain",
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ProjectService drives the proposal lifecycle: creation by students, review
// by the assigned supervisor and the role-scoped read views.
type ProjectService interface {
	Create(ctx context.Context, actor authz.Identity, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error)
	Get(ctx context.Context, actor authz.Identity, id uint) (dto.ProjectResponse, error)
	ListRequests(ctx context.Context, actor authz.Identity, status string) ([]dto.ProjectResponse, error)
	ListAccepted(ctx context.Context, actor authz.Identity) ([]dto.ProjectResponse, error)
	Accept(ctx context.Context, actor authz.Identity, id uint) (dto.ProjectResponse, error)
	Reject(ctx context.Context, actor authz.Identity, id uint) error
	UploadProposal(ctx context.Context, actor authz.Identity, id uint, file *multipart.FileHeader) (dto.ProjectResponse, error)
}

// ProjectServiceOption customises the project service.
type ProjectServiceOption func(*projectService)

// WithProposalStorage enables proposal document uploads.
func WithProposalStorage(storage FileStorage, maxBytes int64) ProjectServiceOption {
	return func(s *projectService) {
		s.storage = storage
		if maxBytes > 0 {
			s.maxProposalBytes = maxBytes
		}
	}
}

// WithProjectEvents publishes lifecycle events after each committed transition.
func WithProjectEvents(publisher ProjectEventPublisher) ProjectServiceOption {
	return func(s *projectService) {
		s.events = publisher
	}
}

// WithClock overrides the time source used for review timestamps.
func WithClock(now func() time.Time) ProjectServiceOption {
	return func(s *projectService) {
		if now != nil {
			s.now = now
		}
	}
}

type projectService struct {
	projects         repository.ProjectRepository
	users            repository.UserRepository
	validator        *validator.Validate
	activity         ActivityRecorder
	events           ProjectEventPublisher
	storage          FileStorage
	maxProposalBytes int64
	sanitizer        *bluemonday.Policy
	tracer           trace.Tracer
	logger           zerolog.Logger
	now              func() time.Time
}

// NewProjectService constructs the lifecycle engine.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger, opts ...ProjectServiceOption) ProjectService {
	svc := &projectService{
		projects:         projects,
		users:            users,
		validator:        validate,
		activity:         activity,
		maxProposalBytes: defaultProposalMaxBytes,
		sanitizer:        bluemonday.StrictPolicy(),
		tracer:           otel.Tracer("github.com/noah-isme/projecthub-api/internal/service/project"),
		logger:           logger.With().Str("component", "project_service").Logger(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *projectService) Create(ctx context.Context, actor authz.Identity, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error) {
	ctx, span := s.tracer.Start(ctx, "projects.create")
	defer span.End()

	response, err := s.create(ctx, actor, payload)
	s.observe(span, "create", err)
	return response, err
}

func (s *projectService) create(ctx context.Context, actor authz.Identity, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error) {
	if err := authz.Authorize(actor, models.RoleStudent); err != nil {
		return dto.ProjectResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	// Tokens outlive account removal, so the owner is resolved like the assignee.
	student, err := s.account(ctx, actor.ID, models.RoleStudent, "student")
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	supervisor, err := s.account(ctx, payload.SupervisorID, models.RoleSupervisor, "supervisor")
	if err != nil {
		return dto.ProjectResponse{}, err
	}

	title := s.clean(payload.ProjectTitle)
	if title == "" {
		return dto.ProjectResponse{}, newValidationError("projectTitle", "title is empty after sanitising")
	}

	members := make([]models.GroupMember, 0, len(payload.GroupMembers))
	for _, member := range payload.GroupMembers {
		members = append(members, models.GroupMember{
			Name:  s.clean(member.Name),
			RegNo: s.clean(member.RegNo),
		})
	}

	project := models.Project{
		ProjectTitle: title,
		Description:  s.clean(payload.Description),
		Proposal:     s.clean(payload.Proposal),
		ProjectType:  s.clean(payload.ProjectType),
		Program:      s.clean(payload.Program),
		StudentID:    student.ID,
		SupervisorID: supervisor.ID,
		GroupMembers: datatypes.NewJSONSlice(members),
	}

	if err := s.projects.Create(ctx, &project); err != nil {
		return dto.ProjectResponse{}, err
	}

	stored, err := s.projects.GetByID(ctx, project.ID)
	if err != nil {
		return dto.ProjectResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionProjectCreated, entityProject, stored.ID, map[string]interface{}{
		"supervisor_id": stored.SupervisorID,
	})
	s.publish(ctx, EventProjectCreated, actor, stored)
	s.logger.Info().Uint("project_id", stored.ID).Uint("student_id", actor.ID).Msg("project created")

	return dto.NewProjectResponse(stored), nil
}

func (s *projectService) Get(ctx context.Context, actor authz.Identity, id uint) (dto.ProjectResponse, error) {
	if err := authz.Authorize(actor, models.RoleStudent, models.RoleSupervisor); err != nil {
		return dto.ProjectResponse{}, err
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return dto.ProjectResponse{}, err
	}

	owner := project.SupervisorID
	if actor.Is(models.RoleStudent) {
		owner = project.StudentID
	}
	if err := authz.AuthorizeOwner(actor, actor.Role, owner); err != nil {
		return dto.ProjectResponse{}, err
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) ListRequests(ctx context.Context, actor authz.Identity, status string) ([]dto.ProjectResponse, error) {
	if err := authz.Authorize(actor, models.RoleStudent, models.RoleSupervisor); err != nil {
		return nil, err
	}

	var (
		projects []models.Project
		err      error
	)
	switch actor.Role {
	case models.RoleStudent:
		projects, err = s.projects.ListByStudent(ctx, actor.ID)
	default:
		filter, parseErr := parseStatusFilter(status)
		if parseErr != nil {
			return nil, parseErr
		}
		projects, err = s.projects.ListBySupervisor(ctx, actor.ID, filter)
	}
	if err != nil {
		return nil, err
	}

	return dto.NewProjectResponseSlice(projects), nil
}

func (s *projectService) ListAccepted(ctx context.Context, actor authz.Identity) ([]dto.ProjectResponse, error) {
	if err := authz.Authorize(actor, models.RoleSupervisor); err != nil {
		return nil, err
	}

	projects, err := s.projects.ListBySupervisor(ctx, actor.ID, models.ProjectStatusAccepted)
	if err != nil {
		return nil, err
	}

	return dto.NewProjectResponseSlice(projects), nil
}

func (s *projectService) Accept(ctx context.Context, actor authz.Identity, id uint) (dto.ProjectResponse, error) {
	ctx, span := s.tracer.Start(ctx, "projects.accept", trace.WithAttributes(attribute.Int64("project.id", int64(id))))
	defer span.End()

	response, err := s.accept(ctx, actor, id)
	s.observe(span, "accept", err)
	return response, err
}

func (s *projectService) accept(ctx context.Context, actor authz.Identity, id uint) (dto.ProjectResponse, error) {
	if _, err := s.reviewable(ctx, actor, id); err != nil {
		return dto.ProjectResponse{}, err
	}

	if err := s.projects.Accept(ctx, id, actor.ID, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, s.lostReview(ctx, id)
		}
		return dto.ProjectResponse{}, err
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return dto.ProjectResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionProjectAccepted, entityProject, id, map[string]interface{}{
		"student_id": project.StudentID,
	})
	s.publish(ctx, EventProjectAccepted, actor, project)
	s.logger.Info().Uint("project_id", id).Uint("supervisor_id", actor.ID).Msg("project accepted")

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Reject(ctx context.Context, actor authz.Identity, id uint) error {
	ctx, span := s.tracer.Start(ctx, "projects.reject", trace.WithAttributes(attribute.Int64("project.id", int64(id))))
	defer span.End()

	err := s.reject(ctx, actor, id)
	s.observe(span, "reject", err)
	return err
}

func (s *projectService) reject(ctx context.Context, actor authz.Identity, id uint) error {
	project, err := s.assigned(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.projects.Reject(ctx, id, actor.ID, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionProjectRejected, entityProject, id, map[string]interface{}{
		"student_id":    project.StudentID,
		"project_title": project.ProjectTitle,
		"prior_status":  string(project.Status),
	})
	s.publish(ctx, EventProjectRejected, actor, project)
	s.logger.Info().Uint("project_id", id).Uint("supervisor_id", actor.ID).Msg("project rejected")

	return nil
}

func (s *projectService) UploadProposal(ctx context.Context, actor authz.Identity, id uint, file *multipart.FileHeader) (dto.ProjectResponse, error) {
	ctx, span := s.tracer.Start(ctx, "projects.upload_proposal", trace.WithAttributes(attribute.Int64("project.id", int64(id))))
	defer span.End()

	response, err := s.uploadProposal(ctx, actor, id, file)
	s.observe(span, "upload_proposal", err)
	return response, err
}

func (s *projectService) uploadProposal(ctx context.Context, actor authz.Identity, id uint, file *multipart.FileHeader) (dto.ProjectResponse, error) {
	if err := authz.Authorize(actor, models.RoleStudent); err != nil {
		return dto.ProjectResponse{}, err
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return dto.ProjectResponse{}, err
	}
	if err := authz.AuthorizeOwner(actor, models.RoleStudent, project.StudentID); err != nil {
		return dto.ProjectResponse{}, err
	}
	if !project.IsPending() {
		return dto.ProjectResponse{}, ErrProjectNotPending
	}
	if s.storage == nil {
		return dto.ProjectResponse{}, ErrStorageUnavailable
	}
	if file == nil {
		return dto.ProjectResponse{}, newValidationError("file", "file is required")
	}
	if file.Size > s.maxProposalBytes {
		return dto.ProjectResponse{}, ErrProposalTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return dto.ProjectResponse{}, fmt.Errorf("open proposal: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxProposalBytes+1))
	if err != nil {
		return dto.ProjectResponse{}, fmt.Errorf("read proposal: %w", err)
	}
	if int64(len(data)) > s.maxProposalBytes {
		return dto.ProjectResponse{}, ErrProposalTooLarge
	}

	detected := mimetype.Detect(data)
	if !proposalTypeAllowed(detected) {
		s.logger.Warn().Str("mime", detected.String()).Uint("project_id", id).Msg("proposal type rejected")
		return dto.ProjectResponse{}, ErrProposalTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, strings.TrimSpace(file.Filename), bytes.NewReader(data))
	if err != nil {
		return dto.ProjectResponse{}, fmt.Errorf("store proposal: %w", err)
	}

	updated, err := s.projects.Update(ctx, id, map[string]interface{}{"proposal_file_url": url})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionProposalUploaded, entityProject, id, map[string]interface{}{
		"mime": detected.String(),
		"size": len(data),
	})

	return dto.NewProjectResponse(updated), nil
}

// assigned loads the project and checks that the caller is its supervisor.
func (s *projectService) assigned(ctx context.Context, actor authz.Identity, id uint) (models.Project, error) {
	if err := authz.Authorize(actor, models.RoleSupervisor); err != nil {
		return models.Project{}, err
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if err := authz.AuthorizeOwner(actor, models.RoleSupervisor, project.SupervisorID); err != nil {
		return models.Project{}, err
	}

	return project, nil
}

// reviewable is assigned plus the requirement that the project still awaits
// a decision. Only accept needs it; reject applies at any status.
func (s *projectService) reviewable(ctx context.Context, actor authz.Identity, id uint) (models.Project, error) {
	project, err := s.assigned(ctx, actor, id)
	if err != nil {
		return models.Project{}, err
	}
	if !project.IsPending() {
		return models.Project{}, ErrProjectNotPending
	}

	return project, nil
}

// account resolves a user id that a new project will reference and checks
// its role. Missing or mismatched accounts are reported against field.
func (s *projectService) account(ctx context.Context, id uint, role models.Role, field string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, newValidationError(field, field+" not found")
		}
		return models.User{}, err
	}
	if user.Role != role {
		return models.User{}, newValidationError(field, "referenced account is not a "+string(role))
	}
	return user, nil
}

// lostReview explains an accept whose conditional update matched nothing:
// a concurrent reject removed the project or another accept landed first.
func (s *projectService) lostReview(ctx context.Context, id uint) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if project.Status == models.ProjectStatusAccepted {
		return ErrProjectNotPending
	}
	return ErrProjectNotFound
}

func (s *projectService) load(ctx context.Context, id uint) (models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, ErrProjectNotFound
		}
		return models.Project{}, err
	}
	return project, nil
}

func (s *projectService) publish(ctx context.Context, eventType string, actor authz.Identity, project models.Project) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ProjectEvent{
		Type:         eventType,
		ProjectID:    project.ID,
		StudentID:    project.StudentID,
		SupervisorID: project.SupervisorID,
		ActorID:      actor.ID,
		OccurredAt:   s.now().UTC(),

		CorrelationID: middleware.CorrelationIDFromContext(ctx),
	}); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Uint("project_id", project.ID).Msg("project event not delivered")
	}
}

func (s *projectService) observe(span trace.Span, transition string, err error) {
	outcome := transitionOutcome(err)
	observability.ProjectTransitions().WithLabelValues(transition, outcome).Inc()
	span.SetAttributes(attribute.String("project.outcome", outcome))
	if err != nil && outcome == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, transition+"_failed")
	}
}

func (s *projectService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func transitionOutcome(err error) string {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, authz.ErrUnauthenticated), errors.Is(err, authz.ErrForbidden):
		return "denied"
	case errors.Is(err, ErrProjectNotFound):
		return "not_found"
	case errors.Is(err, ErrProjectNotPending):
		return "conflict"
	case errors.As(err, &validationErr), isValidatorError(err),
		errors.Is(err, ErrProposalTooLarge), errors.Is(err, ErrProposalTypeNotAllowed):
		return "invalid"
	default:
		return "error"
	}
}

func isValidatorError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func parseStatusFilter(raw string) (models.ProjectStatus, error) {
	status := models.ProjectStatus(strings.ToLower(strings.TrimSpace(raw)))
	if status == "" {
		return "", nil
	}
	if !status.Valid() {
		return "", newValidationError("status", "status must be pending or accepted")
	}
	return status, nil
}

func proposalTypeAllowed(detected *mimetype.MIME) bool {
	for _, allowed := range allowedProposalTypes {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}
