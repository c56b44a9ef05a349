package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService bootstraps administrator accounts, which cannot self-register.
type SeedService interface {
	SeedAdmins(ctx context.Context, token string, payload dto.SeedAdminRequest) (int64, error)
}

type seedService struct {
	users     repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		users:     users,
		validator: validate,
		activity:  activity,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedAdmins creates the listed administrators and skips emails that are
// already registered. It returns the number of accounts created.
func (s *seedService) SeedAdmins(ctx context.Context, token string, payload dto.SeedAdminRequest) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}

	var created int64
	for _, item := range payload.Items {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			s.logger.Debug().Str("email", maskEmailAddress(email)).Msg("admin already present, skipping")
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		hash, err := hashPassword(item.Password)
		if err != nil {
			return created, err
		}

		admin := models.User{
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			Profile:      models.UserProfile{FullName: strings.TrimSpace(item.FullName)},
		}
		if err := s.users.Create(ctx, &admin); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return created, err
		}
		created++

		recordActivity(ctx, s.activity, s.logger, authz.Identity{}, ActionAdminSeeded, entityUser, admin.ID, nil)
	}

	s.logger.Info().Int64("affected", created).Msg("administrators seeded")
	return created, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
