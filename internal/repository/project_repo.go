package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// ProjectFilter narrows project listings and counts.
type ProjectFilter struct {
	StudentID    *uint
	SupervisorID *uint
	Status       models.ProjectStatus
	Search       string
	Page         int
	PageSize     int
}

// ProjectRepository defines persistence operations for project proposals.
// Reads preload the owning student and the assigned supervisor.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (models.Project, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Project, error)
	ListBySupervisor(ctx context.Context, supervisorID uint, status models.ProjectStatus) ([]models.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)
	Count(ctx context.Context, filter ProjectFilter) (int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Project, error)
	Delete(ctx context.Context, id uint) error
	Accept(ctx context.Context, id, supervisorID uint, at time.Time) error
	Reject(ctx context.Context, id, supervisorID uint, at time.Time) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository instantiates a GORM-backed repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// profileColumns limits joined accounts to their display fields.
var profileColumns = []string{"id", "role", "profile_full_name", "profile_reg_no", "profile_program", "profile_department"}

func withProfiles(db *gorm.DB) *gorm.DB {
	selectProfile := func(tx *gorm.DB) *gorm.DB {
		return tx.Select(profileColumns)
	}
	return db.Preload("Student", selectProfile).Preload("Supervisor", selectProfile)
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	project.Status = models.ProjectStatusPending
	project.ReviewedBy = nil
	project.ReviewedAt = nil
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := withProfiles(r.db.WithContext(ctx)).First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (r *projectRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Project, error) {
	projects, _, err := r.List(ctx, ProjectFilter{StudentID: &studentID})
	return projects, err
}

func (r *projectRepository) ListBySupervisor(ctx context.Context, supervisorID uint, status models.ProjectStatus) ([]models.Project, error) {
	projects, _, err := r.List(ctx, ProjectFilter{SupervisorID: &supervisorID, Status: status})
	return projects, err
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	query := applyProjectFilter(r.db.WithContext(ctx).Model(&models.Project{}), filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := withProfiles(query).Scopes(paginate(filter.Page, filter.PageSize)).Order("id ASC").Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *projectRepository) Count(ctx context.Context, filter ProjectFilter) (int64, error) {
	var total int64
	err := applyProjectFilter(r.db.WithContext(ctx).Model(&models.Project{}), filter).Count(&total).Error
	return total, err
}

func (r *projectRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Project, error) {
	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return models.Project{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Project{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Accept flips a pending project owned by the supervisor to accepted in a
// single conditional update. Zero affected rows reports ErrRecordNotFound.
func (r *projectRepository) Accept(ctx context.Context, id, supervisorID uint, at time.Time) error {
	query := r.assignedTo(ctx, id, supervisorID).Where("status = ?", models.ProjectStatusPending)
	return affected(query.Updates(map[string]interface{}{
		"status":      models.ProjectStatusAccepted,
		"reviewed_by": supervisorID,
		"reviewed_at": at,
	}))
}

// Reject removes a live project owned by the supervisor from every read
// path, whatever its status. The row is kept with its reviewer for audit.
func (r *projectRepository) Reject(ctx context.Context, id, supervisorID uint, at time.Time) error {
	return affected(r.assignedTo(ctx, id, supervisorID).Updates(map[string]interface{}{
		"reviewed_by": supervisorID,
		"reviewed_at": at,
		"deleted_at":  at,
	}))
}

// assignedTo scopes an update to one live project of the supervisor. The
// soft-delete clause adds deleted_at IS NULL.
func (r *projectRepository) assignedTo(ctx context.Context, id, supervisorID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Where("supervisor_id = ?", supervisorID)
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func applyProjectFilter(query *gorm.DB, filter ProjectFilter) *gorm.DB {
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.SupervisorID != nil {
		query = query.Where("supervisor_id = ?", *filter.SupervisorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(project_title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return query
}
