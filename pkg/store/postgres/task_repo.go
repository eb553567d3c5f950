package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.Department").
		Preload("Assignee").
		Preload("Members").
		Preload("Members.Member").
		Preload("Members.Member.Department").
		Preload("Subtasks", "is_deleted = ?", false).
		Preload("Checklist").
		Preload("Labels").
		Preload("Labels.Label").
		Preload("Attachments").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_comments.created_at DESC")
		}).
		Preload("Comments.Account").
		Preload("Reports", "is_deleted = ?", false).
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

type TaskFilter struct {
	ProjectID    *uuid.UUID
	AssigneeID   *uuid.UUID
	Status       string
	DepartmentID *uuid.UUID
	MemberID     *uuid.UUID
	TopLevelOnly bool
}

func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).Where("tasks.is_deleted = ?", false)

	if filter.TopLevelOnly {
		query = query.Where("tasks.parent_task_id IS NULL")
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != "" {
		query = query.Where("tasks.status = ?", filter.Status)
	}
	if filter.DepartmentID != nil {
		query = query.
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.department_id = ?", *filter.DepartmentID)
	}
	if filter.MemberID != nil {
		query = query.
			Joins("JOIN task_members ON task_members.task_id = tasks.id").
			Where("task_members.member_id = ?", *filter.MemberID)
	}

	var tasks []model.Task
	err := query.
		Preload("Project").
		Preload("Project.Department").
		Preload("Assignee").
		Preload("Members").
		Preload("Members.Member").
		Preload("Checklist").
		Preload("Labels.Label").
		Preload("Attachments").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ReplaceMembers swaps a task's member set inside the given transaction.
// memberIDs[0] becomes the lead and is mirrored into the legacy assignee
// column; an empty list clears both.
func ReplaceMembers(tx *gorm.DB, taskID uuid.UUID, memberIDs []uuid.UUID, addedBy *uuid.UUID) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskMember{}).Error; err != nil {
		return err
	}

	var lead interface{}
	if len(memberIDs) > 0 {
		rows := make([]model.TaskMember, 0, len(memberIDs))
		for i, memberID := range memberIDs {
			role := model.TaskMemberNormal
			if i == 0 {
				role = model.TaskMemberLead
			}
			rows = append(rows, model.TaskMember{
				TaskID:    taskID,
				MemberID:  memberID,
				Role:      role,
				AddedByID: addedBy,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		lead = memberIDs[0]
	}

	return tx.Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("assignee_id", lead).Error
}

// ActiveMembers returns the non-deleted members among the given ids. Used
// to validate assignment eligibility before any row is written.
func (r *TaskRepository) ActiveMembers(ctx context.Context, memberIDs []uuid.UUID) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", memberIDs, false).
		Find(&members).Error
	return members, err
}

// IsAssignee reports whether the member is assigned to the task.
func (r *TaskRepository) IsAssignee(ctx context.Context, taskID, memberID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TaskMember{}).
		Where("task_id = ? AND member_id = ?", taskID, memberID).
		Count(&count).Error
	return count > 0, err
}
