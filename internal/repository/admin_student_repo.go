package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/projecthub-api/internal/models"
)

// AdminStudentFilter defines filters for listing students from the admin panel.
type AdminStudentFilter struct {
	Search   string
	Program  string
	Page     int
	PageSize int
}

// AdminStudentRepository exposes persistence helpers for admin student operations.
type AdminStudentRepository interface {
	List(ctx context.Context, filter AdminStudentFilter) ([]models.User, int64, error)
	GetByID(ctx context.Context, id uint) (models.User, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
	SoftDelete(ctx context.Context, id uint) error
}

type adminStudentRepository struct {
	db *gorm.DB
}

// NewAdminStudentRepository constructs the admin student repository.
func NewAdminStudentRepository(db *gorm.DB) AdminStudentRepository {
	return &adminStudentRepository{db: db}
}

func (r *adminStudentRepository) students(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleStudent)
}

func (r *adminStudentRepository) List(ctx context.Context, filter AdminStudentFilter) ([]models.User, int64, error) {
	query := r.students(ctx)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(profile_full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(profile_reg_no) LIKE ?", like, like, like)
	}

	if filter.Program != "" {
		query = query.Where("profile_program = ?", filter.Program)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []models.User
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).Order("id ASC").Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *adminStudentRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var student models.User
	if err := r.students(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return models.User{}, err
	}

	return student, nil
}

func (r *adminStudentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	result := r.students(ctx).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// SoftDelete removes the student and every project they own in one
// transaction so no visible project points at a missing owner.
func (r *adminStudentRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed := tx.Where("role = ?", models.RoleStudent).Delete(&models.User{}, id)
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("student_id = ?", id).Delete(&models.Project{}).Error
	})
}
