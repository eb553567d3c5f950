package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/metrics"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

// Directory resolves recipient account ids. A member with no linked account
// is silently skipped by the implementation, never an error.
type Directory interface {
	AccountsByRole(ctx context.Context, role policy.Role, departmentID *uuid.UUID) ([]uuid.UUID, error)
	TaskMemberAccounts(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)
}

// Store persists notification records.
type Store interface {
	Create(ctx context.Context, n *model.Notification) error
}

// roleTarget names a role-scoped recipient group, optionally restricted to
// the event's department.
type roleTarget struct {
	role       policy.Role
	deptScoped bool
}

// routes is the event → recipient table. Events absent from both maps do
// not produce notifications (they exist for the audit log and the bus).
var roleRoutes = map[events.Type][]roleTarget{
	events.ReviewRequested:   {{role: policy.RoleLeader, deptScoped: true}},
	events.TaskCompleted:     {{role: policy.RoleLeader, deptScoped: true}},
	events.EscalatedToLeader: {{role: policy.RoleLeader, deptScoped: true}},
	events.EscalatedToPMO:    {{role: policy.RolePMO}},
	events.ProjectCreated:    {{role: policy.RoleDirector}, {role: policy.RoleAdmin}},
	events.ProjectApproved:   {{role: policy.RolePMO}, {role: policy.RoleLeader, deptScoped: true}},
	events.ProjectRejected:   {{role: policy.RolePMO}},
	events.ProjectClosed:     {{role: policy.RoleDirector}, {role: policy.RoleLeader, deptScoped: true}},
	events.UserCreated:       {{role: policy.RoleAdmin}},
}

// memberRoutes lists the events delivered to all task members.
var memberRoutes = map[events.Type]bool{
	events.ReviewCompleted: true,
	events.TaskRejected:    true,
	events.TaskReturned:    true,
	events.StatusChanged:   true,
	events.DeadlineChanged: true,
	events.CommentAdded:    true,
	events.FileAttached:    true,
}

// Router turns workflow events into notification records. The actor who
// triggered an event never receives the notification it caused.
type Router struct {
	dir    Directory
	store  Store
	logger *zap.Logger
}

func NewRouter(dir Directory, store Store, logger *zap.Logger) *Router {
	return &Router{dir: dir, store: store, logger: logger}
}

// Route resolves the recipient set for an event and writes one notification
// per recipient. Per-recipient write failures are logged and skipped; the
// returned error covers only recipient resolution.
func (r *Router) Route(ctx context.Context, ev events.Event) ([]model.Notification, error) {
	recipients, err := r.resolve(ctx, ev)
	if err != nil {
		return nil, err
	}

	created := make([]model.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		n := model.Notification{
			Type:        string(ev.Type),
			RecipientID: recipientID,
			Message:     Message(ev),
			TaskID:      ev.TaskID,
			ProjectID:   ev.ProjectID,
		}
		if ev.ActorID != uuid.Nil {
			actorID := ev.ActorID
			n.SenderID = &actorID
		}
		if err := r.store.Create(ctx, &n); err != nil {
			r.logger.Warn("failed to create notification",
				zap.String("type", string(ev.Type)),
				zap.String("recipient", recipientID.String()),
				zap.Error(err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(string(ev.Type)).Inc()
		created = append(created, n)
	}
	return created, nil
}

func (r *Router) resolve(ctx context.Context, ev events.Event) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{ev.ActorID: true, uuid.Nil: true}
	var out []uuid.UUID
	add := func(ids []uuid.UUID) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}

	add(ev.Recipients)

	if memberRoutes[ev.Type] && ev.TaskID != nil {
		ids, err := r.dir.TaskMemberAccounts(ctx, *ev.TaskID)
		if err != nil {
			return nil, err
		}
		add(ids)
	}

	for _, target := range roleRoutes[ev.Type] {
		var dept *uuid.UUID
		if target.deptScoped {
			if ev.DepartmentID == nil {
				continue
			}
			dept = ev.DepartmentID
		}
		ids, err := r.dir.AccountsByRole(ctx, target.role, dept)
		if err != nil {
			return nil, err
		}
		add(ids)
	}

	return out, nil
}
