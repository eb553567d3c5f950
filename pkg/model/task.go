package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskMemberLead   = "lead"
	TaskMemberNormal = "member"
)

type Task struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title        string    `gorm:"not null"`
	Description  string
	ProjectID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Project      *Project   `gorm:"foreignKey:ProjectID"`
	ParentTaskID *uuid.UUID `gorm:"type:uuid;index"`
	ParentTask   *Task      `gorm:"foreignKey:ParentTaskID"`
	Subtasks     []Task     `gorm:"foreignKey:ParentTaskID"`
	// AssigneeID mirrors the first entry of Members; kept for backward compat.
	AssigneeID  *uuid.UUID `gorm:"type:uuid;index"`
	Assignee    *Member    `gorm:"foreignKey:AssigneeID"`
	Status      string     `gorm:"type:varchar(30);default:'pending';index"`
	Priority    string     `gorm:"type:varchar(20)"`
	Progress    int        `gorm:"default:0"`
	BeginDate   *time.Time
	DueDate     *time.Time
	CompleteAt  *time.Time
	CreatedByID *uuid.UUID      `gorm:"type:uuid"`
	CreatedBy   *Account        `gorm:"foreignKey:CreatedByID"`
	Members     []TaskMember    `gorm:"foreignKey:TaskID"`
	Checklist   []ChecklistItem `gorm:"foreignKey:TaskID"`
	Labels      []TaskLabel     `gorm:"foreignKey:TaskID"`
	Attachments []Attachment    `gorm:"foreignKey:TaskID"`
	Comments    []TaskComment   `gorm:"foreignKey:TaskID"`
	Reports     []TaskReport    `gorm:"foreignKey:TaskID"`
	IsDeleted   bool            `gorm:"default:false;index"`
	DeletedAt   *time.Time
	DeletedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskMember joins a task to an assigned member. Role is "lead" for the
// first assignee and "member" for the rest.
type TaskMember struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_task_member"`
	MemberID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_task_member"`
	Member    *Member    `gorm:"foreignKey:MemberID"`
	Role      string     `gorm:"type:varchar(10);default:'member'"`
	AddedByID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

type ChecklistItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Content     string    `gorm:"not null"`
	IsCompleted bool      `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Label struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Color     string    `gorm:"type:varchar(20)"`
	CreatedAt time.Time
}

type TaskLabel struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LabelID uuid.UUID `gorm:"type:uuid;not null;index"`
	Label   *Label    `gorm:"foreignKey:LabelID"`
}

type Attachment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	FileName  string     `gorm:"not null"`
	FileURL   string     `gorm:"not null"`
	AddedByID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

type TaskComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Account   *Account  `gorm:"foreignKey:AccountID"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskReport is a periodic progress report written by an assignee.
type TaskReport struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Task        *Task     `gorm:"foreignKey:TaskID"`
	ReporterID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Reporter    *Account  `gorm:"foreignKey:ReporterID"`
	Content     string    `gorm:"type:text;not null"`
	Progress    int       `gorm:"default:0"`
	PeriodType  string    `gorm:"type:varchar(10);default:'daily'"`
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Status      string `gorm:"type:varchar(20);default:'submitted'"`
	IsDeleted   bool   `gorm:"default:false;index"`
	DeletedAt   *time.Time
	DeletedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
