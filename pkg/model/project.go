package model

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectApproved ProjectStatus = "approved"
	ProjectRejected ProjectStatus = "rejected"
	ProjectClosed   ProjectStatus = "closed"
	ProjectDeleted  ProjectStatus = "deleted"
)

type Project struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string        `gorm:"not null;index"`
	Description  string
	DepartmentID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Department   *Department   `gorm:"foreignKey:DepartmentID"`
	Status       ProjectStatus `gorm:"type:varchar(20);default:'active';index"`
	BeginDate    *time.Time
	EndDate      *time.Time
	CreatedByID  *uuid.UUID `gorm:"type:uuid"`
	CreatedBy    *Account   `gorm:"foreignKey:CreatedByID"`
	Tasks        []Task     `gorm:"foreignKey:ProjectID"`
	IsDeleted    bool       `gorm:"default:false;index"`
	DeletedAt    *time.Time
	DeletedBy    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
