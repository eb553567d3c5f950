package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Append records a domain event for the relay. Satisfies events.Outbox.
func (r *OutboxRepository) Append(ctx context.Context, ev events.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var payload model.JSONB
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	row := &model.DomainEvent{
		EventID:   ev.ID,
		EventType: string(ev.Type),
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]model.DomainEvent, error) {
	var rows []model.DomainEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.DomainEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.OutboxStatusPublished,
			"published_at": &now,
		}).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.DomainEvent{}).
		Where("event_id = ?", eventID).
		Update("status", model.OutboxStatusFailed).Error
}
