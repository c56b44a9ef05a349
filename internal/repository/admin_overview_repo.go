package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// OverviewCounts holds the raw totals behind the admin overview.
type OverviewCounts struct {
	Projects         int64
	PendingProjects  int64
	AcceptedProjects int64
	Students         int64
	Supervisors      int64
}

// AdminOverviewRepository supplies aggregate counts for administrators.
type AdminOverviewRepository interface {
	CountProjects(ctx context.Context, status models.ProjectStatus) (int64, error)
	CountUsers(ctx context.Context, role models.Role) (int64, error)
	Counts(ctx context.Context) (OverviewCounts, error)
}

type adminOverviewRepository struct {
	db *gorm.DB
}

// NewAdminOverviewRepository constructs the overview repository.
func NewAdminOverviewRepository(db *gorm.DB) AdminOverviewRepository {
	return &adminOverviewRepository{db: db}
}

func (r *adminOverviewRepository) CountProjects(ctx context.Context, status models.ProjectStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *adminOverviewRepository) CountUsers(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

func (r *adminOverviewRepository) Counts(ctx context.Context) (OverviewCounts, error) {
	var counts OverviewCounts
	var err error

	if counts.Projects, err = r.CountProjects(ctx, ""); err != nil {
		return OverviewCounts{}, err
	}
	if counts.PendingProjects, err = r.CountProjects(ctx, models.ProjectStatusPending); err != nil {
		return OverviewCounts{}, err
	}
	if counts.AcceptedProjects, err = r.CountProjects(ctx, models.ProjectStatusAccepted); err != nil {
		return OverviewCounts{}, err
	}
	if counts.Students, err = r.CountUsers(ctx, models.RoleStudent); err != nil {
		return OverviewCounts{}, err
	}
	if counts.Supervisors, err = r.CountUsers(ctx, models.RoleSupervisor); err != nil {
		return OverviewCounts{}, err
	}

	return counts, nil
}
