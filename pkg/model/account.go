package model

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
	AccountLocked   AccountStatus = "locked"
)

// Account is a login identity. The person behind it lives in Member; an
// account may exist without a linked member (service accounts, seed admin).
type Account struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username          string    `gorm:"uniqueIndex;not null"`
	Password          string    `gorm:"not null"`
	Email             string    `gorm:"index"`
	Avatar            string
	RoleID            uuid.UUID     `gorm:"type:uuid;not null;index"`
	Role              *Role         `gorm:"foreignKey:RoleID"`
	MemberID          *uuid.UUID    `gorm:"type:uuid;index"`
	Member            *Member       `gorm:"foreignKey:MemberID"`
	Status            AccountStatus `gorm:"type:varchar(20);default:'active';index"`
	FailedAttempts    int           `gorm:"default:0"`
	LockedUntil       *time.Time
	ResetToken        string
	ResetTokenExpires *time.Time
	LastActiveAt      *time.Time
	IsDeleted         bool `gorm:"default:false;index"`
	DeletedAt         *time.Time
	DeletedBy         *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member is a person profile, distinct from the login Account.
type Member struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName     string      `gorm:"not null"`
	PhoneNumber  string
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index"`
	Department   *Department `gorm:"foreignKey:DepartmentID"`
	Status       string      `gorm:"type:varchar(20);default:'active'"`
	Accounts     []Account   `gorm:"foreignKey:MemberID"`
	IsDeleted    bool        `gorm:"default:false;index"`
	DeletedAt    *time.Time
	DeletedBy    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Department struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string       `gorm:"not null"`
	ParentID  *uuid.UUID   `gorm:"type:uuid"`
	Parent    *Department  `gorm:"foreignKey:ParentID"`
	Children  []Department `gorm:"foreignKey:ParentID"`
	Members   []Member     `gorm:"foreignKey:DepartmentID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
