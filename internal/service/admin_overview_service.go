package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/projecthub-api/internal/dto"
	"github.com/noah-isme/projecthub-api/internal/models"
	"github.com/noah-isme/projecthub-api/internal/observability"
	"github.com/noah-isme/projecthub-api/internal/repository"
)

const overviewCacheKey = "projecthub:admin:overview"

// AdminOverviewService aggregates counters for the admin dashboard.
type AdminOverviewService interface {
	TotalProjects(ctx context.Context) (dto.TotalProjectsResponse, error)
	TotalSupervisors(ctx context.Context) (dto.TotalSupervisorsResponse, error)
	TotalStudents(ctx context.Context) (dto.TotalStudentsResponse, error)
	Overview(ctx context.Context) (dto.AdminOverviewResponse, error)
}

type adminOverviewService struct {
	repo     repository.AdminOverviewRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdminOverviewService constructs the overview service. A nil cache
// disables caching.
func NewAdminOverviewService(repo repository.AdminOverviewRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminOverviewService {
	return &adminOverviewService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_overview_service").Logger(),
		now:      time.Now,
	}
}

func (s *adminOverviewService) TotalProjects(ctx context.Context) (dto.TotalProjectsResponse, error) {
	count, err := s.repo.CountProjects(ctx, "")
	if err != nil {
		return dto.TotalProjectsResponse{}, err
	}
	return dto.TotalProjectsResponse{TotalProjects: count}, nil
}

func (s *adminOverviewService) TotalSupervisors(ctx context.Context) (dto.TotalSupervisorsResponse, error) {
	count, err := s.repo.CountUsers(ctx, models.RoleSupervisor)
	if err != nil {
		return dto.TotalSupervisorsResponse{}, err
	}
	return dto.TotalSupervisorsResponse{TotalSupervisors: count}, nil
}

func (s *adminOverviewService) TotalStudents(ctx context.Context) (dto.TotalStudentsResponse, error) {
	count, err := s.repo.CountUsers(ctx, models.RoleStudent)
	if err != nil {
		return dto.TotalStudentsResponse{}, err
	}
	return dto.TotalStudentsResponse{TotalStudents: count}, nil
}

func (s *adminOverviewService) Overview(ctx context.Context) (dto.AdminOverviewResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/projecthub-api/internal/service/admin_overview")
	ctx, span := tracer.Start(ctx, "overview.aggregate")
	span.SetAttributes(attribute.String("overview.cache_key", overviewCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, overviewCacheKey).Result()
		if err == nil {
			var response dto.AdminOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("overview.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read overview cache")
			span.RecordError(err)
		}
	}

	counts, err := s.repo.Counts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count_failed")
		return dto.AdminOverviewResponse{}, err
	}

	overview := dto.AdminOverviewResponse{
		TotalProjects:    counts.Projects,
		PendingProjects:  counts.PendingProjects,
		AcceptedProjects: counts.AcceptedProjects,
		TotalStudents:    counts.Students,
		TotalSupervisors: counts.Supervisors,
		GeneratedAt:      s.now().UTC(),
	}
	span.SetAttributes(attribute.Int64("overview.total_projects", counts.Projects))
	observability.ProjectsByStatus().WithLabelValues(string(models.ProjectStatusPending)).Set(float64(counts.PendingProjects))
	observability.ProjectsByStatus().WithLabelValues(string(models.ProjectStatusAccepted)).Set(float64(counts.AcceptedProjects))

	if s.cache != nil && s.cacheTTL > 0 {
		payload, err := json.Marshal(overview)
		if err == nil {
			if err := s.cache.Set(ctx, overviewCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store overview cache")
				span.RecordError(err)
			}
		}
	}

	return overview, nil
}
