package service

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/repository"
)

//go:embed schemas/project_patch.schema.json
var schemaFS embed.FS

const projectPatchSchema = "schemas/project_patch.schema.json"

// AdminProjectService exposes oversight operations on every project.
type AdminProjectService interface {
	List(ctx context.Context, req dto.ProjectListRequest) (dto.ProjectListResponse, error)
	Update(ctx context.Context, actor authz.Identity, id uint, patch []byte) (dto.ProjectResponse, error)
	Delete(ctx context.Context, actor authz.Identity, id uint) error
}

type adminProjectService struct {
	repo      repository.ProjectRepository
	validator *validator.Validate
	schema    *jsonschema.Schema
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAdminProjectService constructs the admin project service. It fails when
// the embedded patch schema does not compile.
func NewAdminProjectService(repo repository.ProjectRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) (AdminProjectService, error) {
	schema, err := compileSchema(projectPatchSchema)
	if err != nil {
		return nil, err
	}

	return &adminProjectService{
		repo:      repo,
		validator: validate,
		schema:    schema,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "admin_project_service").Logger(),
		now:       time.Now,
	}, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

func (s *adminProjectService) List(ctx context.Context, req dto.ProjectListRequest) (dto.ProjectListResponse, error) {
	status, err := parseStatusFilter(req.Status)
	if err != nil {
		return dto.ProjectListResponse{}, err
	}

	filter := repository.ProjectFilter{
		Status:   status,
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.StudentID > 0 {
		filter.StudentID = &req.StudentID
	}
	if req.SupervisorID > 0 {
		filter.SupervisorID = &req.SupervisorID
	}

	projects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ProjectListResponse{}, err
	}

	return dto.ProjectListResponse{
		Items:      dto.NewProjectResponseSlice(projects),
		Pagination: paginationFor(req.Page, req.PageSize, total),
	}, nil
}

func (s *adminProjectService) Update(ctx context.Context, actor authz.Identity, id uint, patch []byte) (dto.ProjectResponse, error) {
	if err := authz.Authorize(actor, models.RoleAdmin); err != nil {
		return dto.ProjectResponse{}, err
	}

	var document interface{}
	if err := json.Unmarshal(patch, &document); err != nil {
		return dto.ProjectResponse{}, newValidationError("body", "patch must be a JSON object")
	}
	if err := s.schema.Validate(document); err != nil {
		return dto.ProjectResponse{}, schemaValidationError(err)
	}

	var payload dto.AdminProjectUpdateRequest
	if err := json.Unmarshal(patch, &payload); err != nil {
		return dto.ProjectResponse{}, newValidationError("body", err.Error())
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	updates, fields := s.buildUpdates(actor, payload)
	if len(updates) == 0 {
		return dto.ProjectResponse{}, newValidationError("body", "patch contains no changes")
	}
	if title, ok := updates["project_title"]; ok && title == "" {
		return dto.ProjectResponse{}, newValidationError("projectTitle", "title is empty after sanitising")
	}

	project, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	metadata := map[string]interface{}{"fields": fields}
	if payload.Status != nil {
		metadata["status"] = *payload.Status
	}
	recordActivity(ctx, s.activity, s.logger, actor, ActionProjectUpdated, entityProject, id, metadata)

	return dto.NewProjectResponse(project), nil
}

func (s *adminProjectService) buildUpdates(actor authz.Identity, payload dto.AdminProjectUpdateRequest) (map[string]interface{}, []string) {
	updates := map[string]interface{}{}
	fields := make([]string, 0)

	text := func(column, field string, value *string) {
		if value == nil {
			return
		}
		updates[column] = strings.TrimSpace(s.sanitizer.Sanitize(*value))
		fields = append(fields, field)
	}
	text("project_title", "projectTitle", payload.ProjectTitle)
	text("description", "description", payload.Description)
	text("proposal", "proposal", payload.Proposal)
	text("project_type", "projectType", payload.ProjectType)
	text("program", "program", payload.Program)

	if payload.GroupMembers != nil {
		members := make([]models.GroupMember, 0, len(*payload.GroupMembers))
		for _, member := range *payload.GroupMembers {
			members = append(members, models.GroupMember{
				Name:  strings.TrimSpace(s.sanitizer.Sanitize(member.Name)),
				RegNo: strings.TrimSpace(s.sanitizer.Sanitize(member.RegNo)),
			})
		}
		updates["group_members"] = datatypes.NewJSONSlice(members)
		fields = append(fields, "groupMembers")
	}

	if payload.Status != nil {
		status := models.ProjectStatus(*payload.Status)
		updates["status"] = status
		if status == models.ProjectStatusAccepted {
			updates["reviewed_by"] = actor.ID
			updates["reviewed_at"] = s.now().UTC()
		} else {
			updates["reviewed_by"] = nil
			updates["reviewed_at"] = nil
		}
		fields = append(fields, "status")
	}

	return updates, fields
}

func (s *adminProjectService) Delete(ctx context.Context, actor authz.Identity, id uint) error {
	if err := authz.Authorize(actor, models.RoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionProjectDeleted, entityProject, id, nil)
	return nil
}

// schemaValidationError reports the deepest failing keyword of a schema error.
func schemaValidationError(err error) error {
	var schemaErr *jsonschema.ValidationError
	if !errors.As(err, &schemaErr) {
		return newValidationError("body", err.Error())
	}

	leaf := schemaErr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		field = "body"
	}
	return newValidationError(field, leaf.Message)
}
