package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SystemLog is an append-only audit record.
type SystemLog struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	Action     string     `gorm:"type:varchar(40);not null;index"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index"`
	Actor      *Account   `gorm:"foreignKey:ActorID"`
	Message    string     `gorm:"type:text"`
	TargetType string     `gorm:"type:varchar(30);index"`
	TargetID   string     `gorm:"type:varchar(64);index"`
	// Changes lists the field names an update touched, when the event
	// carries them.
	Changes   pq.StringArray `gorm:"type:text[]"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}
