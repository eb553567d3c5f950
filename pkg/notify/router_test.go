package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

type fakeDirectory struct {
	byRole  map[policy.Role][]uuid.UUID
	byDept  map[uuid.UUID][]uuid.UUID
	members map[uuid.UUID][]uuid.UUID
	err     error
}

func (d *fakeDirectory) AccountsByRole(_ context.Context, role policy.Role, departmentID *uuid.UUID) ([]uuid.UUID, error) {
	if d.err != nil {
		return nil, d.err
	}
	if departmentID != nil {
		return d.byDept[*departmentID], nil
	}
	return d.byRole[role], nil
}

func (d *fakeDirectory) TaskMemberAccounts(_ context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.members[taskID], nil
}

type fakeStore struct {
	created []model.Notification
	failFor map[uuid.UUID]bool
}

func (s *fakeStore) Create(_ context.Context, n *model.Notification) error {
	if s.failFor[n.RecipientID] {
		return errors.New("insert failed")
	}
	s.created = append(s.created, *n)
	return nil
}

func recipientSet(ns []model.Notification) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(ns))
	for _, n := range ns {
		out[n.RecipientID] = true
	}
	return out
}

func TestRouteExcludesActor(t *testing.T) {
	actor := uuid.New()
	other := uuid.New()
	dir := &fakeDirectory{byRole: map[policy.Role][]uuid.UUID{
		policy.RolePMO: {actor, other},
	}}
	store := &fakeStore{}
	r := NewRouter(dir, store, zap.NewNop())

	ev := events.New(events.EscalatedToPMO, actor)
	created, err := r.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	got := recipientSet(created)
	if got[actor] {
		t.Fatalf("actor received a notification for their own event")
	}
	if !got[other] {
		t.Fatalf("expected recipient %s missing", other)
	}
}

func TestRouteDeptScopedSkipsWithoutDepartment(t *testing.T) {
	dept := uuid.New()
	leader := uuid.New()
	dir := &fakeDirectory{byDept: map[uuid.UUID][]uuid.UUID{dept: {leader}}}
	store := &fakeStore{}
	r := NewRouter(dir, store, zap.NewNop())

	// Review request without a department resolves nobody.
	ev := events.New(events.ReviewRequested, uuid.New())
	created, err := r.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("dept-scoped route without department produced %d notifications", len(created))
	}

	ev.DepartmentID = &dept
	created, err = r.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !recipientSet(created)[leader] {
		t.Fatalf("department leader not notified on review request")
	}
}

func TestRouteMemberEvents(t *testing.T) {
	taskID := uuid.New()
	actor := uuid.New()
	m1, m2 := uuid.New(), uuid.New()
	dir := &fakeDirectory{members: map[uuid.UUID][]uuid.UUID{taskID: {actor, m1, m2}}}
	store := &fakeStore{}
	r := NewRouter(dir, store, zap.NewNop())

	ev := events.New(events.CommentAdded, actor)
	ev.TaskID = &taskID
	created, err := r.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	got := recipientSet(created)
	if got[actor] || !got[m1] || !got[m2] {
		t.Fatalf("unexpected recipient set: %v", got)
	}
}

func TestRouteExplicitRecipientsDeduplicated(t *testing.T) {
	taskID := uuid.New()
	actor := uuid.New()
	member := uuid.New()
	dir := &fakeDirectory{members: map[uuid.UUID][]uuid.UUID{taskID: {member}}}
	store := &fakeStore{}
	r := NewRouter(dir, store, zap.NewNop())

	ev := events.New(events.StatusChanged, actor)
	ev.TaskID = &taskID
	ev.Recipients = []uuid.UUID{member, member}
	created, err := r.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 notification for deduplicated recipient, got %d", len(created))
	}
	n := created[0]
	if n.RecipientID != member {
		t.Fatalf("notification went to %s, want %s", n.RecipientID, member)
	}
	if n.SenderID == nil || *n.SenderID != actor {
		t.Fatalf("notification sender not set to the actor")
	}
	if n.Message == "" {
		t.Fatalf("notification message is empty")
	}
}

func TestRouteUnroutedEventIsSilent(t *testing.T) {
	dir := &fakeDirectory{byRole: map[policy.Role][]uuid.UUID{policy.RoleAdmin: {uuid.New()}}}
	store := &fakeStore{}
	r := NewRouter(dir, store, zap.NewNop())

	created, err := r.Route(context.Background(), events.New(events.LoggedIn, uuid.New()))
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("login event produced %d notifications", len(created))
	}
}

func TestRouteSkipsFailedWrites(t *testing.T) {
	ok, bad := uuid.New(), uuid.New()
	dir := &fakeDirectory{byRole: map[policy.Role][]uuid.UUID{policy.RoleAdmin: {bad, ok}}}
	store := &fakeStore{failFor: map[uuid.UUID]bool{bad: true}}
	r := NewRouter(dir, store, zap.NewNop())

	created, err := r.Route(context.Background(), events.New(events.UserCreated, uuid.New()))
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	got := recipientSet(created)
	if got[bad] {
		t.Fatalf("failed write reported as created")
	}
	if !got[ok] {
		t.Fatalf("failure for one recipient dropped the rest")
	}
}

func TestRouteDirectoryError(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("db gone")}
	store := &fakeStore{}
	r := NewRouter(dir, store, zap.NewNop())

	if _, err := r.Route(context.Background(), events.New(events.UserCreated, uuid.New())); err == nil {
		t.Fatalf("directory error not propagated")
	}
	if len(store.created) != 0 {
		t.Fatalf("notifications written despite resolution failure")
	}
}
