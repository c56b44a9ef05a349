package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/repository"
)

// AdminStudentService orchestrates admin student management use cases.
type AdminStudentService interface {
	List(ctx context.Context, req dto.AdminStudentListRequest) (dto.AdminStudentListResponse, error)
	Get(ctx context.Context, id uint) (dto.AdminStudentDetailResponse, error)
	Update(ctx context.Context, id uint, payload dto.AdminStudentUpdateRequest, actor authz.Identity) (dto.AdminStudentResponse, error)
	Delete(ctx context.Context, id uint, actor authz.Identity) error
}

type adminStudentService struct {
	repo      repository.AdminStudentRepository
	projects  repository.ProjectRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewAdminStudentService constructs the admin student service. The project
// repository backs the proposals shown on a student's detail view.
func NewAdminStudentService(repo repository.AdminStudentRepository, projects repository.ProjectRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AdminStudentService {
	return &adminStudentService{
		repo:      repo,
		projects:  projects,
		validator: validator,
		activity:  activity,
		logger:    logger.With().Str("component", "admin_student_service").Logger(),
	}
}

func (s *adminStudentService) List(ctx context.Context, req dto.AdminStudentListRequest) (dto.AdminStudentListResponse, error) {
	filter := repository.AdminStudentFilter{
		Search:   strings.TrimSpace(req.Search),
		Program:  strings.TrimSpace(req.Program),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminStudentListResponse{}, err
	}

	responses := make([]dto.AdminStudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewAdminStudentResponse(student))
	}

	return dto.AdminStudentListResponse{
		Items:      responses,
		Pagination: paginationFor(req.Page, req.PageSize, total),
	}, nil
}

func (s *adminStudentService) Get(ctx context.Context, id uint) (dto.AdminStudentDetailResponse, error) {
	student, err := s.student(ctx, id)
	if err != nil {
		return dto.AdminStudentDetailResponse{}, err
	}

	projects, err := s.projects.ListByStudent(ctx, id)
	if err != nil {
		return dto.AdminStudentDetailResponse{}, err
	}

	return dto.AdminStudentDetailResponse{
		AdminStudentResponse: student,
		Projects:             dto.NewProjectResponseSlice(projects),
	}, nil
}

func (s *adminStudentService) student(ctx context.Context, id uint) (dto.AdminStudentResponse, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminStudentResponse{}, ErrAdminStudentNotFound
		}
		return dto.AdminStudentResponse{}, err
	}

	return dto.NewAdminStudentResponse(student), nil
}

func (s *adminStudentService) Update(ctx context.Context, id uint, payload dto.AdminStudentUpdateRequest, actor authz.Identity) (dto.AdminStudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminStudentResponse{}, err
	}

	updates := make(map[string]interface{})
	changedFields := make([]string, 0)

	if payload.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
		changedFields = append(changedFields, "email")
	}
	if payload.FullName != nil {
		updates["profile_full_name"] = strings.TrimSpace(*payload.FullName)
		changedFields = append(changedFields, "fullName")
	}
	if payload.RegNo != nil {
		updates["profile_reg_no"] = strings.TrimSpace(*payload.RegNo)
		changedFields = append(changedFields, "regNo")
	}
	if payload.Program != nil {
		updates["profile_program"] = strings.TrimSpace(*payload.Program)
		changedFields = append(changedFields, "program")
	}
	if payload.Department != nil {
		updates["profile_department"] = strings.TrimSpace(*payload.Department)
		changedFields = append(changedFields, "department")
	}

	if len(updates) == 0 {
		return s.student(ctx, id)
	}

	student, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.AdminStudentResponse{}, ErrAdminStudentNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.AdminStudentResponse{}, ErrEmailTaken
		}
		return dto.AdminStudentResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionStudentUpdated, entityStudent, id, map[string]interface{}{
		"fields": changedFields,
	})

	return dto.NewAdminStudentResponse(student), nil
}

func (s *adminStudentService) Delete(ctx context.Context, id uint, actor authz.Identity) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminStudentNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, actor, ActionStudentDeleted, entityStudent, id, map[string]interface{}{
		"cascade": "projects",
	})

	return nil
}
