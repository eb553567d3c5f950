package audit

import (
	"testing"

	"github.com/taskdesk/taskdesk/pkg/events"
)

func TestStatusFamilyCollapsesOnStatusChange(t *testing.T) {
	family := []events.Type{
		events.ReviewRequested,
		events.ReviewCompleted,
		events.TaskRejected,
		events.TaskReturned,
		events.StatusChanged,
	}
	for _, ev := range family {
		action, ok := actionForEvent[ev]
		if !ok {
			t.Fatalf("event %q has no audit action", ev)
		}
		if action != ActionTaskStatusChange {
			t.Fatalf("event %q maps to %q, want %q", ev, action, ActionTaskStatusChange)
		}
	}
}

func TestTaskUpdateDistinctFromStatusChange(t *testing.T) {
	if actionForEvent[events.TaskUpdated] != ActionTaskUpdate {
		t.Fatalf("task_updated maps to %q", actionForEvent[events.TaskUpdated])
	}
	if actionForEvent[events.TaskCompleted] != ActionTaskComplete {
		t.Fatalf("task_completed maps to %q", actionForEvent[events.TaskCompleted])
	}
}

func TestSubResourceFamiliesCollapsePerResource(t *testing.T) {
	cases := []struct {
		ev   events.Type
		want string
	}{
		{events.CommentAdded, ActionTaskComment},
		{events.CommentEdited, ActionTaskComment},
		{events.CommentDeleted, ActionTaskComment},
		{events.FileAttached, ActionTaskAttachment},
		{events.FileRemoved, ActionTaskAttachment},
		{events.ChecklistAdded, ActionTaskChecklist},
		{events.ChecklistUpdated, ActionTaskChecklist},
		{events.ChecklistRemoved, ActionTaskChecklist},
		{events.LabelAttached, ActionTaskLabel},
		{events.LabelDetached, ActionTaskLabel},
	}
	for _, tc := range cases {
		action, ok := actionForEvent[tc.ev]
		if !ok {
			t.Fatalf("event %q has no audit action", tc.ev)
		}
		if action != tc.want {
			t.Fatalf("event %q maps to %q, want %q", tc.ev, action, tc.want)
		}
	}
}

func TestUnmappedEventsProduceNoAction(t *testing.T) {
	// Notification-only events stay out of the audit log.
	for _, ev := range []events.Type{
		events.DeadlineChanged,
		events.EscalatedToLeader,
		events.EscalatedToPMO,
	} {
		if action, ok := actionForEvent[ev]; ok {
			t.Fatalf("event %q unexpectedly audited as %q", ev, action)
		}
	}
}

func TestActionLabel(t *testing.T) {
	if ActionLabel(ActionTaskStatusChange) != "Thay đổi trạng thái công việc" {
		t.Fatalf("unexpected label %q", ActionLabel(ActionTaskStatusChange))
	}
	if ActionLabel("unknown_action") != "unknown_action" {
		t.Fatalf("unknown action should echo the raw value")
	}
}

func TestActionsReturnsCopy(t *testing.T) {
	a := Actions()
	a[ActionLogin] = "mutated"
	if ActionLabel(ActionLogin) != "Đăng nhập" {
		t.Fatalf("Actions() leaked the internal label map")
	}
}
