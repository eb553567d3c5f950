package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/metrics"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
	"github.com/taskdesk/taskdesk/pkg/workflow"
)

type TaskService struct {
	tasks      *postgres.TaskRepository
	projects   *postgres.ProjectRepository
	accounts   *postgres.AccountRepository
	db         *gorm.DB
	policy     *policy.Policy
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

func NewTaskService(
	tasks *postgres.TaskRepository,
	projects *postgres.ProjectRepository,
	accounts *postgres.AccountRepository,
	db *gorm.DB,
	pol *policy.Policy,
	dispatcher *events.Dispatcher,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		tasks:      tasks,
		projects:   projects,
		accounts:   accounts,
		db:         db,
		policy:     pol,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *TaskService) deny(action policy.Action, reason string) Result {
	metrics.PolicyDenialsTotal.WithLabelValues(string(action)).Inc()
	return Forbidden(reason)
}

// validateMembers checks that every member id exists and is not soft
// deleted, and returns their department ids for the policy gate.
func (s *TaskService) validateMembers(ctx context.Context, memberIDs []uuid.UUID) ([]uuid.UUID, Result, bool) {
	if len(memberIDs) == 0 {
		return nil, Result{}, true
	}
	members, err := s.tasks.ActiveMembers(ctx, memberIDs)
	if err != nil {
		s.logger.Error("member validation failed", zap.Error(err))
		return nil, Internal(), false
	}
	found := make(map[uuid.UUID]*model.Member, len(members))
	for i := range members {
		found[members[i].ID] = &members[i]
	}
	depts := make([]uuid.UUID, 0, len(memberIDs))
	for _, id := range memberIDs {
		m, ok := found[id]
		if !ok {
			return nil, BadRequest("thành viên không tồn tại hoặc đã bị xóa"), false
		}
		if m.DepartmentID != nil {
			depts = append(depts, *m.DepartmentID)
		}
	}
	return depts, Result{}, true
}

func selfAssignOnly(actor policy.Actor, memberIDs []uuid.UUID) bool {
	if len(memberIDs) == 0 || actor.MemberID == nil {
		return false
	}
	for _, id := range memberIDs {
		if id != *actor.MemberID {
			return false
		}
	}
	return true
}

type CreateTaskInput struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	ProjectID    uuid.UUID   `json:"projectId"`
	ParentTaskID *uuid.UUID  `json:"parentTaskId"`
	MemberIDs    []uuid.UUID `json:"memberIds"`
	Priority     string      `json:"priority"`
	BeginDate    *time.Time  `json:"beginDate"`
	DueDate      *time.Time  `json:"dueDate"`
}

func (s *TaskService) Create(ctx context.Context, actor policy.Actor, in CreateTaskInput) Result {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return BadRequest("thiếu tiêu đề công việc")
	}
	if in.ProjectID == uuid.Nil {
		return BadRequest("thiếu dự án")
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("dự án không tồn tại")
		}
		s.logger.Error("project lookup failed", zap.Error(err))
		return Internal()
	}
	if project.IsDeleted {
		return NotFound("dự án không tồn tại")
	}

	if in.ParentTaskID != nil {
		parent, err := s.tasks.GetByID(ctx, *in.ParentTaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("công việc cha không tồn tại")
			}
			s.logger.Error("parent task lookup failed", zap.Error(err))
			return Internal()
		}
		if parent.IsDeleted {
			return NotFound("công việc cha không tồn tại")
		}
		if parent.ProjectID != in.ProjectID {
			return BadRequest("công việc cha không thuộc dự án này")
		}
	}

	assigneeDepts, res, ok := s.validateMembers(ctx, in.MemberIDs)
	if !ok {
		return res
	}

	d := s.policy.Authorize(actor, policy.TaskCreate, policy.Context{
		TargetDepartmentID:    &project.DepartmentID,
		ParentTaskID:          in.ParentTaskID,
		AssigneeDepartmentIDs: assigneeDepts,
		SelfAssignOnly:        selfAssignOnly(actor, in.MemberIDs),
	})
	if !d.Allowed {
		return s.deny(policy.TaskCreate, d.Reason)
	}

	task := &model.Task{
		Title:        in.Title,
		Description:  in.Description,
		ProjectID:    in.ProjectID,
		ParentTaskID: in.ParentTaskID,
		Status:       workflow.StatusPending,
		Priority:     in.Priority,
		BeginDate:    in.BeginDate,
		DueDate:      in.DueDate,
		CreatedByID:  &actor.AccountID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if len(in.MemberIDs) > 0 {
			return postgres.ReplaceMembers(tx, task.ID, in.MemberIDs, &actor.AccountID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("task create failed", zap.String("title", in.Title), zap.Error(err))
		return Internal()
	}

	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		s.logger.Error("task reload failed", zap.Error(err))
		return Internal()
	}

	evts := []events.Event{s.taskEvent(events.TaskCreated, actor, created)}
	if len(in.MemberIDs) > 0 {
		assigned := s.taskEvent(events.TaskAssigned, actor, created)
		assigned.Recipients = s.memberAccounts(ctx, task.ID)
		evts = append(evts, assigned)
	}
	s.dispatcher.Dispatch(ctx, evts...)

	return Created(created)
}

// taskEvent fills the routing context common to every task event.
func (s *TaskService) taskEvent(t events.Type, actor policy.Actor, task *model.Task) events.Event {
	ev := events.New(t, actor.AccountID)
	ev.ActorName = actor.Username
	taskID := task.ID
	ev.TaskID = &taskID
	ev.TaskTitle = task.Title
	projectID := task.ProjectID
	ev.ProjectID = &projectID
	if task.Project != nil {
		ev.ProjectName = task.Project.Name
		deptID := task.Project.DepartmentID
		ev.DepartmentID = &deptID
		if task.Project.Department != nil {
			ev.DepartmentName = task.Project.Department.Name
		}
	}
	ev.TargetType = "task"
	ev.TargetID = task.ID.String()
	return ev
}

func (s *TaskService) memberAccounts(ctx context.Context, taskID uuid.UUID) []uuid.UUID {
	ids, err := s.accounts.TaskMemberAccounts(ctx, taskID)
	if err != nil {
		s.logger.Warn("member account resolution failed",
			zap.String("task_id", taskID.String()), zap.Error(err))
		return nil
	}
	return ids
}

type ListTasksInput struct {
	ProjectID    *uuid.UUID
	Status       string
	TopLevelOnly bool
}

func (s *TaskService) List(ctx context.Context, actor policy.Actor, in ListTasksInput) Result {
	filter := postgres.TaskFilter{
		ProjectID:    in.ProjectID,
		Status:       in.Status,
		TopLevelOnly: in.TopLevelOnly,
	}
	switch actor.Role {
	case policy.RoleStaff:
		if actor.MemberID == nil {
			return OK([]model.Task{})
		}
		filter.MemberID = actor.MemberID
	case policy.RoleLeader:
		if actor.DepartmentID == nil {
			return OK([]model.Task{})
		}
		filter.DepartmentID = actor.DepartmentID
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		s.logger.Error("task list failed", zap.Error(err))
		return Internal()
	}
	return OK(tasks)
}

func (s *TaskService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	task, res, ok := s.load(ctx, id)
	if !ok {
		return res
	}

	if actor.Role == policy.RoleLeader || actor.Role == policy.RoleStaff {
		inDept := task.Project != nil && actor.InDepartment(task.Project.DepartmentID)
		if !inDept && !s.actorIsAssignee(ctx, actor, id) {
			return Forbidden("bạn không có quyền xem công việc này")
		}
	}
	return OK(task)
}

func (s *TaskService) load(ctx context.Context, id uuid.UUID) (*model.Task, Result, bool) {
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

func (s *TaskService) actorIsAssignee(ctx context.Context, actor policy.Actor, taskID uuid.UUID) bool {
	if actor.MemberID == nil {
		return false
	}
	ok, err := s.tasks.IsAssignee(ctx, taskID, *actor.MemberID)
	if err != nil {
		s.logger.Warn("assignee check failed", zap.String("task_id", taskID.String()), zap.Error(err))
		return false
	}
	return ok
}

type UpdateTaskInput struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Progress    *int         `json:"progress"`
	Priority    *string      `json:"priority"`
	BeginDate   *time.Time   `json:"beginDate"`
	DueDate     *time.Time   `json:"dueDate"`
	MemberIDs   *[]uuid.UUID `json:"memberIds"`
}

// fields names the task fields the request is trying to write, using the
// API field names the Staff allow-list is defined over.
func (in UpdateTaskInput) fields() []string {
	var out []string
	if in.Title != nil {
		out = append(out, "title")
	}
	if in.Description != nil {
		out = append(out, "description")
	}
	if in.Status != nil {
		out = append(out, "status")
	}
	if in.Progress != nil {
		out = append(out, "progress")
	}
	if in.Priority != nil {
		out = append(out, "priority")
	}
	if in.BeginDate != nil {
		out = append(out, "beginDate")
	}
	if in.DueDate != nil {
		out = append(out, "dueDate")
	}
	if in.MemberIDs != nil {
		out = append(out, "memberIds")
	}
	return out
}

// Update applies a task mutation inside one transaction: field writes and
// the member-set replacement commit or roll back together. Exactly one
// status event fires when the status value actually changed; a no-op status
// write produces none.
func (s *TaskService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateTaskInput) Result {
	task, res, ok := s.load(ctx, id)
	if !ok {
		return res
	}

	var targetDept *uuid.UUID
	if task.Project != nil {
		deptID := task.Project.DepartmentID
		targetDept = &deptID
	}

	isAssignee := s.actorIsAssignee(ctx, actor, id)
	d := s.policy.Authorize(actor, policy.TaskUpdate, policy.Context{
		TargetDepartmentID: targetDept,
		IsAssignee:         isAssignee,
	})
	if !d.Allowed {
		return s.deny(policy.TaskUpdate, d.Reason)
	}

	requested := in.fields()
	if len(requested) == 0 {
		return BadRequest("không có trường nào để cập nhật")
	}

	if actor.Role == policy.RoleStaff {
		for _, f := range requested {
			if !policy.StaffFieldAllowed(f) {
				return s.deny(policy.TaskUpdate, "nhân viên không được sửa trường '"+f+"'")
			}
		}
		if in.Status != nil && !policy.StaffStatusAllowed(workflow.Canonical(*in.Status)) {
			return s.deny(policy.TaskUpdate, "nhân viên không được đặt trạng thái '"+*in.Status+"'")
		}
	}

	if in.Progress != nil {
		if err := workflow.ValidateProgress(*in.Progress); err != nil {
			return BadRequest(err.Error())
		}
	}

	var memberIDs []uuid.UUID
	if in.MemberIDs != nil {
		memberIDs = *in.MemberIDs
		assigneeDepts, res, ok := s.validateMembers(ctx, memberIDs)
		if !ok {
			return res
		}
		if actor.Role == policy.RoleLeader {
			for _, dept := range assigneeDepts {
				if !actor.InDepartment(dept) {
					return s.deny(policy.TaskUpdate, "chỉ được giao việc cho nhân viên thuộc phòng ban của mình")
				}
			}
		}
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return BadRequest("tiêu đề công việc không được để trống")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Progress != nil {
		updates["progress"] = *in.Progress
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.BeginDate != nil {
		updates["begin_date"] = *in.BeginDate
	}

	deadlineChanged := false
	if in.DueDate != nil {
		updates["due_date"] = *in.DueDate
		deadlineChanged = task.DueDate == nil || !task.DueDate.Equal(*in.DueDate)
	}

	now := time.Now().UTC()
	var change workflow.StatusChange
	statusChanged := false
	if in.Status != nil {
		change, statusChanged = workflow.ApplyStatus(task, *in.Status, now)
		if statusChanged {
			updates["status"] = task.Status
			if change.CompletedAt != nil {
				updates["complete_at"] = *change.CompletedAt
			}
		}
	}

	if len(updates) == 0 && in.MemberIDs == nil {
		// every requested write was a no-op status change
		return OK(task)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.MemberIDs != nil {
			return postgres.ReplaceMembers(tx, id, memberIDs, &actor.AccountID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("task update failed", zap.String("task_id", id.String()), zap.Error(err))
		return Internal()
	}

	updated, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("task reload failed", zap.Error(err))
		return Internal()
	}

	var evts []events.Event
	if statusChanged {
		ev := s.taskEvent(change.Event, actor, updated)
		ev.Detail = workflow.Label(change.To)
		evts = append(evts, ev)
	} else {
		ev := s.taskEvent(events.TaskUpdated, actor, updated)
		ev.Fields = requested
		evts = append(evts, ev)
	}
	if deadlineChanged {
		evts = append(evts, s.taskEvent(events.DeadlineChanged, actor, updated))
	}
	if in.MemberIDs != nil && len(memberIDs) > 0 {
		assigned := s.taskEvent(events.TaskAssigned, actor, updated)
		assigned.Recipients = s.memberAccounts(ctx, id)
		evts = append(evts, assigned)
	}
	s.dispatcher.Dispatch(ctx, evts...)

	return OK(updated)
}

func (s *TaskService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	task, res, ok := s.load(ctx, id)
	if !ok {
		return res
	}

	var targetDept *uuid.UUID
	if task.Project != nil {
		deptID := task.Project.DepartmentID
		targetDept = &deptID
	}
	d := s.policy.Authorize(actor, policy.TaskDelete, policy.Context{TargetDepartmentID: targetDept})
	if !d.Allowed {
		return s.deny(policy.TaskDelete, d.Reason)
	}
	if actor.Role == policy.RoleLeader && targetDept != nil && !actor.InDepartment(*targetDept) {
		return s.deny(policy.TaskDelete, "chỉ được xóa công việc thuộc phòng ban của mình")
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"deleted_by": actor.AccountID,
			"status":     workflow.StatusDeleted,
		}).Error
	if err != nil {
		s.logger.Error("task delete failed", zap.String("task_id", id.String()), zap.Error(err))
		return Internal()
	}

	ev := s.taskEvent(events.TaskDeleted, actor, task)
	s.dispatcher.Dispatch(ctx, ev)

	return OKMessage("xóa công việc thành công")
}
