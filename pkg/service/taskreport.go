package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
	"github.com/taskdesk/taskdesk/pkg/workflow"
)

// TaskReportService manages periodic progress reports. Creation requires
// being an assignee or holding an elevated role; updates and deletes are
// reporter-or-elevated.
type TaskReportService struct {
	tasks  *postgres.TaskRepository
	db     *gorm.DB
	logger *zap.Logger
}

func NewTaskReportService(tasks *postgres.TaskRepository, db *gorm.DB, logger *zap.Logger) *TaskReportService {
	return &TaskReportService{tasks: tasks, db: db, logger: logger}
}

func elevated(actor policy.Actor, task *model.Task) bool {
	switch actor.Role {
	case policy.RolePMO, policy.RoleDirector, policy.RoleAdmin:
		return true
	case policy.RoleLeader:
		return task.Project != nil && actor.InDepartment(task.Project.DepartmentID)
	}
	return false
}

func (s *TaskReportService) loadTask(ctx context.Context, id uuid.UUID) (*model.Task, Result, bool) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("công việc không tồn tại"), false
		}
		s.logger.Error("task get failed", zap.Error(err))
		return nil, Internal(), false
	}
	if task.IsDeleted {
		return nil, NotFound("công việc không tồn tại"), false
	}
	return task, Result{}, true
}

func (s *TaskReportService) mayReport(ctx context.Context, actor policy.Actor, task *model.Task) bool {
	if elevated(actor, task) {
		return true
	}
	if actor.MemberID == nil {
		return false
	}
	ok, err := s.tasks.IsAssignee(ctx, task.ID, *actor.MemberID)
	if err != nil {
		s.logger.Warn("assignee check failed", zap.Error(err))
		return false
	}
	return ok
}

type CreateReportInput struct {
	Content     string     `json:"content"`
	Progress    int        `json:"progress"`
	PeriodType  string     `json:"periodType"`
	PeriodStart *time.Time `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"`
}

func (s *TaskReportService) Create(ctx context.Context, actor policy.Actor, taskID uuid.UUID, in CreateReportInput) Result {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return BadRequest("thiếu nội dung báo cáo")
	}
	if err := workflow.ValidateProgress(in.Progress); err != nil {
		return BadRequest(err.Error())
	}

	task, res, ok := s.loadTask(ctx, taskID)
	if !ok {
		return res
	}
	if !s.mayReport(ctx, actor, task) {
		return Forbidden("chỉ người được giao việc hoặc quản lý mới được báo cáo")
	}

	periodType := in.PeriodType
	if periodType == "" {
		periodType = "daily"
	}

	report := &model.TaskReport{
		TaskID:      taskID,
		ReporterID:  actor.AccountID,
		Content:     in.Content,
		Progress:    in.Progress,
		PeriodType:  periodType,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Status:      "submitted",
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		s.logger.Error("report create failed", zap.Error(err))
		return Internal()
	}
	return Created(report)
}

func (s *TaskReportService) List(ctx context.Context, actor policy.Actor, taskID uuid.UUID) Result {
	task, res, ok := s.loadTask(ctx, taskID)
	if !ok {
		return res
	}
	if !s.mayReport(ctx, actor, task) {
		return Forbidden("bạn không có quyền xem báo cáo của công việc này")
	}

	var reports []model.TaskReport
	err := s.db.WithContext(ctx).
		Preload("Reporter").
		Where("task_id = ? AND is_deleted = ?", taskID, false).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		s.logger.Error("report list failed", zap.Error(err))
		return Internal()
	}
	return OK(reports)
}

type UpdateReportInput struct {
	Content  *string `json:"content"`
	Progress *int    `json:"progress"`
	Status   *string `json:"status"`
}

func (s *TaskReportService) Update(ctx context.Context, actor policy.Actor, taskID, reportID uuid.UUID, in UpdateReportInput) Result {
	task, res, ok := s.loadTask(ctx, taskID)
	if !ok {
		return res
	}

	var report model.TaskReport
	err := s.db.WithContext(ctx).
		First(&report, "id = ? AND task_id = ? AND is_deleted = ?", reportID, taskID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("báo cáo không tồn tại")
		}
		s.logger.Error("report get failed", zap.Error(err))
		return Internal()
	}

	if report.ReporterID != actor.AccountID && !elevated(actor, task) {
		return Forbidden("chỉ người báo cáo hoặc quản lý mới được sửa báo cáo")
	}

	updates := map[string]interface{}{}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.Progress != nil {
		if err := workflow.ValidateProgress(*in.Progress); err != nil {
			return BadRequest(err.Error())
		}
		updates["progress"] = *in.Progress
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if len(updates) == 0 {
		return BadRequest("không có trường nào để cập nhật")
	}

	err = s.db.WithContext(ctx).
		Model(&model.TaskReport{}).
		Where("id = ?", reportID).
		Updates(updates).Error
	if err != nil {
		s.logger.Error("report update failed", zap.Error(err))
		return Internal()
	}
	return OKMessage("cập nhật báo cáo thành công")
}

func (s *TaskReportService) Delete(ctx context.Context, actor policy.Actor, taskID, reportID uuid.UUID) Result {
	task, res, ok := s.loadTask(ctx, taskID)
	if !ok {
		return res
	}

	var report model.TaskReport
	err := s.db.WithContext(ctx).
		First(&report, "id = ? AND task_id = ? AND is_deleted = ?", reportID, taskID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("báo cáo không tồn tại")
		}
		s.logger.Error("report get failed", zap.Error(err))
		return Internal()
	}

	if report.ReporterID != actor.AccountID && !elevated(actor, task) {
		return Forbidden("chỉ người báo cáo hoặc quản lý mới được xóa báo cáo")
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).
		Model(&model.TaskReport{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"deleted_by": actor.AccountID,
		}).Error
	if err != nil {
		s.logger.Error("report delete failed", zap.Error(err))
		return Internal()
	}
	return OKMessage("xóa báo cáo thành công")
}
