package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/metrics"
	"github.com/taskdesk/taskdesk/pkg/model"
)

// Store persists system log rows.
type Store interface {
	Create(ctx context.Context, entry *model.SystemLog) error
}

// Logger writes audit entries. Every write is best-effort: failures are
// logged locally and never surface to the caller.
type Logger struct {
	store  Store
	logger *zap.Logger
}

func NewLogger(store Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

// Record appends one audit entry.
func (l *Logger) Record(ctx context.Context, action string, actorID uuid.UUID, message, targetType, targetID string, changes []string) {
	entry := &model.SystemLog{
		Action:     action,
		Message:    message,
		TargetType: targetType,
		TargetID:   targetID,
		Changes:    changes,
	}
	if actorID != uuid.Nil {
		id := actorID
		entry.ActorID = &id
	}
	if err := l.store.Create(ctx, entry); err != nil {
		l.logger.Warn("failed to write audit entry",
			zap.String("action", action),
			zap.Error(err))
		return
	}
	metrics.AuditEntriesTotal.WithLabelValues(action).Inc()
}

// HandleEvent maps a domain event to an audit entry. Events without an
// audit action are ignored.
func (l *Logger) HandleEvent(ctx context.Context, ev events.Event) {
	action, ok := actionForEvent[ev.Type]
	if !ok {
		return
	}
	message := ev.Message
	if message == "" {
		message = defaultMessage(ev)
	}
	l.Record(ctx, action, ev.ActorID, message, ev.TargetType, ev.TargetID, ev.Fields)
}

func defaultMessage(ev events.Event) string {
	switch {
	case ev.TaskTitle != "":
		return fmt.Sprintf("%s: %q", ActionLabel(actionForEvent[ev.Type]), ev.TaskTitle)
	case ev.ProjectName != "":
		return fmt.Sprintf("%s: %q", ActionLabel(actionForEvent[ev.Type]), ev.ProjectName)
	}
	return ActionLabel(actionForEvent[ev.Type])
}
