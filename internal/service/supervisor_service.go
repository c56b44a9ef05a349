package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/repository"
)

// SupervisorService lists supervisors a student can address a proposal to.
type SupervisorService interface {
	List(ctx context.Context) ([]dto.SupervisorResponse, error)
}

type supervisorService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewSupervisorService constructs the supervisor directory.
func NewSupervisorService(users repository.UserRepository, logger zerolog.Logger) SupervisorService {
	return &supervisorService{
		users:  users,
		logger: logger.With().Str("component", "supervisor_service").Logger(),
	}
}

func (s *supervisorService) List(ctx context.Context) ([]dto.SupervisorResponse, error) {
	supervisors, err := s.users.ListByRole(ctx, models.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	return dto.NewSupervisorResponseSlice(supervisors), nil
}
