package events

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	// Task workflow
	TaskCreated       Type = "task_created"
	TaskAssigned      Type = "task_assigned"
	TaskUpdated       Type = "task_updated"
	TaskDeleted       Type = "task_deleted"
	TaskCompleted     Type = "task_completed"
	TaskRejected      Type = "task_rejected"
	TaskReturned      Type = "task_returned"
	ReviewRequested   Type = "review_requested"
	ReviewCompleted   Type = "review_completed"
	StatusChanged     Type = "status_changed"
	DeadlineChanged   Type = "deadline_changed"
	EscalatedToLeader Type = "escalate_to_leader"
	EscalatedToPMO    Type = "escalate_to_pmo"

	// Project workflow
	ProjectCreated  Type = "project_created"
	ProjectApproved Type = "project_director_approved"
	ProjectRejected Type = "project_director_rejected"
	ProjectClosed   Type = "project_closed"
	ProjectUpdated  Type = "project_updated"
	ProjectDeleted  Type = "project_deleted"

	// Interaction
	CommentAdded     Type = "comment_new"
	CommentEdited    Type = "comment_edited"
	CommentDeleted   Type = "comment_deleted"
	FileAttached     Type = "file_attached"
	FileRemoved      Type = "file_removed"
	ChecklistAdded   Type = "checklist_item_added"
	ChecklistUpdated Type = "checklist_item_updated"
	ChecklistRemoved Type = "checklist_item_removed"
	LabelAttached    Type = "label_attached"
	LabelDetached    Type = "label_detached"

	// Identity / administration
	LoggedIn        Type = "login"
	LoginFailed     Type = "login_failed"
	PasswordChanged Type = "password_change"
	PasswordReset   Type = "password_reset"
	UserCreated     Type = "user_created"
	UserUpdated     Type = "user_updated"
	UserDeleted     Type = "user_deleted"
	UserRestored    Type = "user_restored"
)

// Event is a domain event raised after a primary mutation commits. The
// dispatcher fans it out to the notification router, the audit log, the
// redis bus and the outbox; none of those may fail the originating request.
type Event struct {
	ID             uuid.UUID  `json:"id"`
	Type           Type       `json:"type"`
	ActorID        uuid.UUID  `json:"actor_id"`
	ActorName      string     `json:"actor_name,omitempty"`
	TaskID         *uuid.UUID `json:"task_id,omitempty"`
	TaskTitle      string     `json:"task_title,omitempty"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
	ProjectName    string     `json:"project_name,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
	DepartmentName string     `json:"department_name,omitempty"`
	// Recipients lists explicit recipient accounts for events that target a
	// known set (e.g. assignment) instead of a role.
	Recipients []uuid.UUID `json:"recipients,omitempty"`
	// Detail is free text folded into the notification message (escalation
	// note, rejection reason, new status value).
	Detail string `json:"detail,omitempty"`
	// Fields names the fields an update touched, for the audit trail.
	Fields     []string  `json:"fields,omitempty"`
	TargetType string    `json:"target_type,omitempty"`
	TargetID   string    `json:"target_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(t Type, actorID uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}
