package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is immutable after creation except for the IsRead flag.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Type        string     `gorm:"type:varchar(40);not null;index"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Recipient   *Account   `gorm:"foreignKey:RecipientID"`
	SenderID    *uuid.UUID `gorm:"type:uuid"`
	Sender      *Account   `gorm:"foreignKey:SenderID"`
	Message     string     `gorm:"type:text;not null"`
	TaskID      *uuid.UUID `gorm:"type:uuid;index"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index"`
	IsRead      bool       `gorm:"default:false;index"`
	CreatedAt   time.Time  `gorm:"index"`
}
