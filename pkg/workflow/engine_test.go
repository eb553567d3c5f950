package workflow

import (
	"testing"
	"time"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"in_progress", StatusInProgress},
		{"in-progress", StatusInProgress},
		{"IN_PROGRESS", StatusInProgress},
		{" waiting-approval ", StatusWaitingApproval},
		{"done", StatusDone},
		{"custom_state", "custom_state"},
		{"Custom_State", "custom_state"},
	}
	for _, tc := range cases {
		if got := Canonical(tc.in); got != tc.want {
			t.Fatalf("Canonical(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestApplyStatusNoOp(t *testing.T) {
	task := &model.Task{Status: "waiting_approval"}
	change, ok := ApplyStatus(task, "waiting-approval", time.Now())
	if ok {
		t.Fatalf("legacy spelling of the same status must be a no-op, got change %+v", change)
	}
	if task.Status != "waiting_approval" {
		t.Fatalf("no-op write mutated the task: status %q", task.Status)
	}
	if task.CompleteAt != nil {
		t.Fatalf("no-op write stamped completion")
	}
}

func TestApplyStatusCompletion(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	for _, status := range []string{"done", "completed"} {
		task := &model.Task{Status: StatusInProgress}
		change, ok := ApplyStatus(task, status, now)
		if !ok {
			t.Fatalf("transition to %q reported no-op", status)
		}
		if task.CompleteAt == nil || !task.CompleteAt.Equal(now) {
			t.Fatalf("transition to %q did not stamp completion: %v", status, task.CompleteAt)
		}
		if change.CompletedAt == nil || !change.CompletedAt.Equal(now) {
			t.Fatalf("change for %q missing completion stamp", status)
		}
		if change.Event != events.TaskCompleted {
			t.Fatalf("transition to %q produced event %q, want %q", status, change.Event, events.TaskCompleted)
		}
	}
}

func TestApplyStatusEvents(t *testing.T) {
	cases := []struct {
		to   string
		want events.Type
	}{
		{"review_request", events.ReviewRequested},
		{"waiting_approval", events.ReviewRequested},
		{"approved", events.ReviewCompleted},
		{"rejected", events.TaskRejected},
		{"returned", events.TaskReturned},
		{"done", events.TaskCompleted},
		{"completed", events.TaskCompleted},
		{"pending", events.StatusChanged},
		{"some_custom", events.StatusChanged},
	}
	for _, tc := range cases {
		task := &model.Task{Status: StatusInProgress}
		change, ok := ApplyStatus(task, tc.to, time.Now())
		if !ok {
			t.Fatalf("transition to %q reported no-op", tc.to)
		}
		if change.Event != tc.want {
			t.Fatalf("transition to %q produced event %q, want %q", tc.to, change.Event, tc.want)
		}
		if change.From != StatusInProgress {
			t.Fatalf("change.From = %q, want %q", change.From, StatusInProgress)
		}
	}
}

func TestApplyStatusNonTerminalKeepsCompleteAt(t *testing.T) {
	task := &model.Task{Status: StatusPending}
	if _, ok := ApplyStatus(task, "in_progress", time.Now()); !ok {
		t.Fatalf("transition reported no-op")
	}
	if task.CompleteAt != nil {
		t.Fatalf("non-terminal transition stamped completion")
	}
}

func TestValidateProgress(t *testing.T) {
	for _, v := range []int{0, 1, 50, 100} {
		if err := ValidateProgress(v); err != nil {
			t.Fatalf("ValidateProgress(%d) = %v", v, err)
		}
	}
	for _, v := range []int{-1, 101, 1000} {
		if err := ValidateProgress(v); err == nil {
			t.Fatalf("ValidateProgress(%d) accepted out-of-range value", v)
		}
	}
}

func TestProjectTransitionEvent(t *testing.T) {
	cases := []struct {
		status string
		want   events.Type
	}{
		{"approved", events.ProjectApproved},
		{"rejected", events.ProjectRejected},
		{"closed", events.ProjectClosed},
	}
	for _, tc := range cases {
		got, err := ProjectTransitionEvent(tc.status)
		if err != nil {
			t.Fatalf("ProjectTransitionEvent(%q) = %v", tc.status, err)
		}
		if got != tc.want {
			t.Fatalf("ProjectTransitionEvent(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
	if _, err := ProjectTransitionEvent("active"); err == nil {
		t.Fatalf("ProjectTransitionEvent accepted non-director status")
	}
}

func TestLabelFallback(t *testing.T) {
	if Label("done") != "Hoàn thành" {
		t.Fatalf("Label(done) = %q", Label("done"))
	}
	if Label("mystery") != "mystery" {
		t.Fatalf("unknown status should fall back to the raw value, got %q", Label("mystery"))
	}
}
