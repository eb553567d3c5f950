package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
)

type fakeStore struct {
	entries []model.SystemLog
	err     error
}

func (s *fakeStore) Create(_ context.Context, entry *model.SystemLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func taskInteractionEvent(t events.Type) events.Event {
	ev := events.New(t, uuid.New())
	ev.ActorName = "tester"
	ev.TaskTitle = "Viết tài liệu API"
	ev.TargetType = "task"
	ev.TargetID = uuid.New().String()
	return ev
}

func TestHandleEventRecordsSubResourceMutations(t *testing.T) {
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
		{events.ChecklistRemoved, ActionTaskChecklist},
		{events.LabelAttached, ActionTaskLabel},
		{events.LabelDetached, ActionTaskLabel},
	}
	for _, tc := range cases {
		store := &fakeStore{}
		l := NewLogger(store, zap.NewNop())
		l.HandleEvent(context.Background(), taskInteractionEvent(tc.ev))
		if len(store.entries) != 1 {
			t.Fatalf("event %q produced %d audit entries, want 1", tc.ev, len(store.entries))
		}
		entry := store.entries[0]
		if entry.Action != tc.want {
			t.Fatalf("event %q recorded action %q, want %q", tc.ev, entry.Action, tc.want)
		}
		if entry.TargetType != "task" {
			t.Fatalf("event %q recorded target type %q", tc.ev, entry.TargetType)
		}
		if entry.Message == "" {
			t.Fatalf("event %q recorded an empty message", tc.ev)
		}
	}
}

func TestHandleEventSkipsUnmapped(t *testing.T) {
	store := &fakeStore{}
	l := NewLogger(store, zap.NewNop())
	l.HandleEvent(context.Background(), taskInteractionEvent(events.DeadlineChanged))
	if len(store.entries) != 0 {
		t.Fatalf("unmapped event wrote %d audit entries", len(store.entries))
	}
}

func TestHandleEventCarriesFields(t *testing.T) {
	store := &fakeStore{}
	l := NewLogger(store, zap.NewNop())

	ev := taskInteractionEvent(events.TaskUpdated)
	ev.Fields = []string{"description", "progress"}
	l.HandleEvent(context.Background(), ev)

	if len(store.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(store.entries))
	}
	changes := store.entries[0].Changes
	if len(changes) != 2 || changes[0] != "description" || changes[1] != "progress" {
		t.Fatalf("changes = %v", changes)
	}
}

func TestRecordSwallowsStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("insert failed")}
	l := NewLogger(store, zap.NewNop())
	l.Record(context.Background(), ActionLogin, uuid.New(), "msg", "account", "id", nil)
}
