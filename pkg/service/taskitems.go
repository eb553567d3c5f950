package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

// TaskItemService handles the task sub-resources: checklist items, labels,
// attachments and comments.
type TaskItemService struct {
	tasks      *postgres.TaskRepository
	accounts   *postgres.AccountRepository
	db         *gorm.DB
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

func NewTaskItemService(tasks *postgres.TaskRepository, accounts *postgres.AccountRepository, db *gorm.DB, dispatcher *events.Dispatcher, logger *zap.Logger) *TaskItemService {
	return &TaskItemService{tasks: tasks, accounts: accounts, db: db, dispatcher: dispatcher, logger: logger}
}

func (s *TaskItemService) load(ctx context.Context, id uuid.UUID) (*model.Task, Result, bool) {
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

// canInteract gates sub-resource writes: PMO always, Leader within their
// department, Staff when assigned. Director and Admin stay read-only.
func (s *TaskItemService) canInteract(ctx context.Context, actor policy.Actor, task *model.Task) (Result, bool) {
	switch actor.Role {
	case policy.RolePMO:
		return Result{}, true
	case policy.RoleLeader:
		if task.Project != nil && !actor.InDepartment(task.Project.DepartmentID) {
			return Forbidden("chỉ được thao tác trên công việc thuộc phòng ban của mình"), false
		}
		return Result{}, true
	case policy.RoleStaff:
		if actor.MemberID == nil {
			return Forbidden("bạn không được giao công việc này"), false
		}
		ok, err := s.tasks.IsAssignee(ctx, task.ID, *actor.MemberID)
		if err != nil {
			s.logger.Warn("assignee check failed", zap.Error(err))
			return Internal(), false
		}
		if !ok {
			return Forbidden("bạn không được giao công việc này"), false
		}
		return Result{}, true
	}
	return Forbidden("vai trò '" + actor.RoleName + "' không được thao tác trên công việc"), false
}

func (s *TaskItemService) interactionEvent(t events.Type, actor policy.Actor, task *model.Task) events.Event {
	ev := events.New(t, actor.AccountID)
	ev.ActorName = actor.Username
	taskID := task.ID
	ev.TaskID = &taskID
	ev.TaskTitle = task.Title
	projectID := task.ProjectID
	ev.ProjectID = &projectID
	ev.TargetType = "task"
	ev.TargetID = task.ID.String()
	return ev
}

// --- checklist ---

func (s *TaskItemService) AddChecklistItem(ctx context.Context, actor policy.Actor, taskID uuid.UUID, content string) Result {
	content = strings.TrimSpace(content)
	if content == "" {
		return BadRequest("thiếu nội dung mục kiểm tra")
	}
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	item := &model.ChecklistItem{TaskID: taskID, Content: content}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		s.logger.Error("checklist item create failed", zap.Error(err))
		return Internal()
	}

	ev := s.interactionEvent(events.ChecklistAdded, actor, task)
	ev.Detail = content
	s.dispatcher.Dispatch(ctx, ev)

	return Created(item)
}

type UpdateChecklistInput struct {
	Content     *string `json:"content"`
	IsCompleted *bool   `json:"isCompleted"`
}

func (s *TaskItemService) UpdateChecklistItem(ctx context.Context, actor policy.Actor, taskID, itemID uuid.UUID, in UpdateChecklistInput) Result {
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	updates := map[string]interface{}{}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.IsCompleted != nil {
		updates["is_completed"] = *in.IsCompleted
	}
	if len(updates) == 0 {
		return BadRequest("không có trường nào để cập nhật")
	}

	tx := s.db.WithContext(ctx).
		Model(&model.ChecklistItem{}).
		Where("id = ? AND task_id = ?", itemID, taskID).
		Updates(updates)
	if tx.Error != nil {
		s.logger.Error("checklist item update failed", zap.Error(tx.Error))
		return Internal()
	}
	if tx.RowsAffected == 0 {
		return NotFound("mục kiểm tra không tồn tại")
	}

	s.dispatcher.Dispatch(ctx, s.interactionEvent(events.ChecklistUpdated, actor, task))

	return OKMessage("cập nhật mục kiểm tra thành công")
}

func (s *TaskItemService) DeleteChecklistItem(ctx context.Context, actor policy.Actor, taskID, itemID uuid.UUID) Result {
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	tx := s.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", itemID, taskID).
		Delete(&model.ChecklistItem{})
	if tx.Error != nil {
		s.logger.Error("checklist item delete failed", zap.Error(tx.Error))
		return Internal()
	}
	if tx.RowsAffected == 0 {
		return NotFound("mục kiểm tra không tồn tại")
	}

	s.dispatcher.Dispatch(ctx, s.interactionEvent(events.ChecklistRemoved, actor, task))

	return OKMessage("xóa mục kiểm tra thành công")
}

// --- labels ---

// AttachLabel attaches an existing label by id, or creates one by name and
// attaches it.
type AttachLabelInput struct {
	LabelID *uuid.UUID `json:"labelId"`
	Name    string     `json:"name"`
	Color   string     `json:"color"`
}

func (s *TaskItemService) AttachLabel(ctx context.Context, actor policy.Actor, taskID uuid.UUID, in AttachLabelInput) Result {
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	var labelID uuid.UUID
	var labelName string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.LabelID != nil {
			var label model.Label
			if err := tx.First(&label, "id = ?", *in.LabelID).Error; err != nil {
				return err
			}
			labelID = label.ID
			labelName = label.Name
		} else {
			name := strings.TrimSpace(in.Name)
			if name == "" {
				return gorm.ErrInvalidData
			}
			var label model.Label
			err := tx.Where("name = ?", name).First(&label).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				label = model.Label{Name: name, Color: in.Color}
				if err := tx.Create(&label).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			labelID = label.ID
			labelName = label.Name
		}

		var count int64
		if err := tx.Model(&model.TaskLabel{}).
			Where("task_id = ? AND label_id = ?", taskID, labelID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&model.TaskLabel{TaskID: taskID, LabelID: labelID}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("nhãn không tồn tại")
		}
		if errors.Is(err, gorm.ErrInvalidData) {
			return BadRequest("thiếu tên nhãn")
		}
		s.logger.Error("label attach failed", zap.Error(err))
		return Internal()
	}

	ev := s.interactionEvent(events.LabelAttached, actor, task)
	ev.Detail = labelName
	s.dispatcher.Dispatch(ctx, ev)

	return OK(map[string]interface{}{"labelId": labelID})
}

func (s *TaskItemService) DetachLabel(ctx context.Context, actor policy.Actor, taskID, labelID uuid.UUID) Result {
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	tx := s.db.WithContext(ctx).
		Where("task_id = ? AND label_id = ?", taskID, labelID).
		Delete(&model.TaskLabel{})
	if tx.Error != nil {
		s.logger.Error("label detach failed", zap.Error(tx.Error))
		return Internal()
	}
	if tx.RowsAffected == 0 {
		return NotFound("nhãn chưa được gắn vào công việc")
	}

	s.dispatcher.Dispatch(ctx, s.interactionEvent(events.LabelDetached, actor, task))

	return OKMessage("gỡ nhãn thành công")
}

// --- attachments ---

type AddAttachmentInput struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
}

func (s *TaskItemService) AddAttachment(ctx context.Context, actor policy.Actor, taskID uuid.UUID, in AddAttachmentInput) Result {
	if in.FileName == "" || in.FileURL == "" {
		return BadRequest("thiếu tên hoặc đường dẫn tệp")
	}
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	attachment := &model.Attachment{
		TaskID:    taskID,
		FileName:  in.FileName,
		FileURL:   in.FileURL,
		AddedByID: &actor.AccountID,
	}
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		s.logger.Error("attachment create failed", zap.Error(err))
		return Internal()
	}

	ev := s.interactionEvent(events.FileAttached, actor, task)
	ev.Detail = in.FileName
	s.dispatcher.Dispatch(ctx, ev)

	return Created(attachment)
}

func (s *TaskItemService) DeleteAttachment(ctx context.Context, actor policy.Actor, taskID, attachmentID uuid.UUID) Result {
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	tx := s.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", attachmentID, taskID).
		Delete(&model.Attachment{})
	if tx.Error != nil {
		s.logger.Error("attachment delete failed", zap.Error(tx.Error))
		return Internal()
	}
	if tx.RowsAffected == 0 {
		return NotFound("tệp đính kèm không tồn tại")
	}

	s.dispatcher.Dispatch(ctx, s.interactionEvent(events.FileRemoved, actor, task))

	return OKMessage("xóa tệp đính kèm thành công")
}

// --- comments ---

func (s *TaskItemService) AddComment(ctx context.Context, actor policy.Actor, taskID uuid.UUID, content string) Result {
	content = strings.TrimSpace(content)
	if content == "" {
		return BadRequest("thiếu nội dung bình luận")
	}
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}
	if res, ok := s.canInteract(ctx, actor, task); !ok {
		return res
	}

	comment := &model.TaskComment{
		TaskID:    taskID,
		AccountID: actor.AccountID,
		Content:   content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		s.logger.Error("comment create failed", zap.Error(err))
		return Internal()
	}

	s.dispatcher.Dispatch(ctx, s.interactionEvent(events.CommentAdded, actor, task))

	return Created(comment)
}

func (s *TaskItemService) UpdateComment(ctx context.Context, actor policy.Actor, taskID, commentID uuid.UUID, content string) Result {
	content = strings.TrimSpace(content)
	if content == "" {
		return BadRequest("thiếu nội dung bình luận")
	}
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}

	var comment model.TaskComment
	err := s.db.WithContext(ctx).
		First(&comment, "id = ? AND task_id = ?", commentID, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("bình luận không tồn tại")
		}
		s.logger.Error("comment get failed", zap.Error(err))
		return Internal()
	}
	if comment.AccountID != actor.AccountID {
		return Forbidden("chỉ được sửa bình luận của chính mình")
	}

	err = s.db.WithContext(ctx).
		Model(&model.TaskComment{}).
		Where("id = ?", commentID).
		Update("content", content).Error
	if err != nil {
		s.logger.Error("comment update failed", zap.Error(err))
		return Internal()
	}

	s.dispatcher.Dispatch(ctx, s.interactionEvent(events.CommentEdited, actor, task))

	return OKMessage("cập nhật bình luận thành công")
}

// DeleteComment allows the author or an elevated role (PMO, Leader within
// department) to remove a comment.
func (s *TaskItemService) DeleteComment(ctx context.Context, actor policy.Actor, taskID, commentID uuid.UUID) Result {
	task, res, ok := s.load(ctx, taskID)
	if !ok {
		return res
	}

	var comment model.TaskComment
	err := s.db.WithContext(ctx).
		First(&comment, "id = ? AND task_id = ?", commentID, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("bình luận không tồn tại")
		}
		s.logger.Error("comment get failed", zap.Error(err))
		return Internal()
	}

	if comment.AccountID != actor.AccountID {
		elevated := actor.Role == policy.RolePMO ||
			(actor.Role == policy.RoleLeader && task.Project != nil && actor.InDepartment(task.Project.DepartmentID))
		if !elevated {
			return Forbidden("chỉ được xóa bình luận của chính mình")
		}
	}

	if err := s.db.WithContext(ctx).Delete(&model.TaskComment{}, "id = ?", commentID).Error; err != nil {
		s.logger.Error("comment delete failed", zap.Error(err))
		return Internal()
	}

	s.dispatcher.Dispatch(ctx, s.interactionEvent(events.CommentDeleted, actor, task))

	return OKMessage("xóa bình luận thành công")
}
