package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Tasks", "is_deleted = ?", false).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// NameExists reports whether a non-deleted project already uses the name.
func (r *ProjectRepository) NameExists(ctx context.Context, name string, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("name = ? AND is_deleted = ?", name, false)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type ProjectFilter struct {
	DepartmentID *uuid.UUID
	Status       string
}

func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]model.Project, error) {
	query := r.db.WithContext(ctx).Where("is_deleted = ?", false)
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var projects []model.Project
	err := query.
		Preload("Department").
		Preload("CreatedBy").
		Order("begin_date DESC NULLS LAST").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Updates(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Updates(updates).Error
}
