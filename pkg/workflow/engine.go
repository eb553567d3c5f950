package workflow

import (
	"fmt"
	"time"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
)

// StatusChange describes the effect of one status write that actually
// changed the stored value.
type StatusChange struct {
	From        string
	To          string
	CompletedAt *time.Time
	// Event is the routing event the change produces. Exactly one per
	// change; a no-op write produces none.
	Event events.Type
}

// ApplyStatus mutates the task for a requested status write and reports the
// change. A write equal to the stored value (after canonicalization) is a
// no-op: the task is untouched and ok is false.
func ApplyStatus(task *model.Task, newStatus string, now time.Time) (change StatusChange, ok bool) {
	from := Canonical(task.Status)
	to := Canonical(newStatus)
	if from == to {
		return StatusChange{}, false
	}

	task.Status = to
	change = StatusChange{From: from, To: to, Event: statusEvent(to)}

	if IsTerminalDone(to) {
		stamp := now.UTC()
		task.CompleteAt = &stamp
		change.CompletedAt = &stamp
	}

	return change, true
}

func statusEvent(canonicalStatus string) events.Type {
	switch {
	case IsReviewRequest(canonicalStatus):
		return events.ReviewRequested
	case canonicalStatus == StatusApproved:
		return events.ReviewCompleted
	case canonicalStatus == StatusRejected:
		return events.TaskRejected
	case canonicalStatus == StatusReturned:
		return events.TaskReturned
	case IsTerminalDone(canonicalStatus):
		return events.TaskCompleted
	default:
		return events.StatusChanged
	}
}

// ValidateProgress enforces the 0..100 range.
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("tiến độ phải nằm trong khoảng 0-100, nhận được %d", progress)
	}
	return nil
}

// ProjectTransitionEvent maps a Director-approved project status to its
// routing event.
func ProjectTransitionEvent(status string) (events.Type, error) {
	switch Canonical(status) {
	case StatusApproved:
		return events.ProjectApproved, nil
	case StatusRejected:
		return events.ProjectRejected, nil
	case "closed":
		return events.ProjectClosed, nil
	}
	return "", fmt.Errorf("trạng thái dự án '%s' không hợp lệ", status)
}
