package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Member").
		Preload("Member.Department").
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Member").
		Preload("Member.Department").
		First(&account, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("email = ? AND is_deleted = ?", email, false).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByResetToken(ctx context.Context, token string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("reset_token = ? AND is_deleted = ?", token, false).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Updates(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UsernameOrEmailTaken checks conflicts among non-deleted accounts,
// optionally excluding one account (for updates).
func (r *AccountRepository) UsernameOrEmailTaken(ctx context.Context, username, email string, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("is_deleted = ?", false).
		Where("username = ? OR email = ?", username, email)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type AccountFilter struct {
	Status       string // active | inactive | deleted | all
	RoleID       *uuid.UUID
	DepartmentID *uuid.UUID
	Search       string
	Limit        int
	Offset       int
}

func (r *AccountRepository) List(ctx context.Context, filter AccountFilter) ([]model.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Account{})

	switch filter.Status {
	case "deleted":
		query = query.Where("accounts.is_deleted = ?", true)
	case "active", "inactive", "locked":
		query = query.Where("accounts.is_deleted = ? AND accounts.status = ?", false, filter.Status)
	default:
		query = query.Where("accounts.is_deleted = ?", false)
	}

	if filter.RoleID != nil {
		query = query.Where("accounts.role_id = ?", *filter.RoleID)
	}
	if filter.DepartmentID != nil {
		query = query.
			Joins("JOIN members ON members.id = accounts.member_id").
			Where("members.department_id = ?", *filter.DepartmentID)
	}
	if filter.Search != "" {
		needle := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("accounts.username ILIKE ? OR accounts.email ILIKE ?", needle, needle)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []model.Account
	err := query.
		Preload("Role").
		Preload("Member").
		Preload("Member.Department").
		Order("accounts.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&accounts).Error
	return accounts, total, err
}

// AccountsByRole resolves active, non-deleted account ids for a normalized
// role, optionally scoped to a department. Role names are matched against
// the full synonym table.
func (r *AccountRepository) AccountsByRole(ctx context.Context, role policy.Role, departmentID *uuid.UUID) ([]uuid.UUID, error) {
	names := policy.Synonyms(role)
	if len(names) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Joins("JOIN roles ON roles.id = accounts.role_id").
		Where("LOWER(roles.name) IN ?", names).
		Where("accounts.status = ? AND accounts.is_deleted = ?", model.AccountActive, false)

	if departmentID != nil {
		query = query.
			Joins("JOIN members ON members.id = accounts.member_id").
			Where("members.department_id = ?", *departmentID)
	}

	var ids []uuid.UUID
	err := query.Pluck("accounts.id", &ids).Error
	return ids, err
}

// TaskMemberAccounts returns the active account ids behind a task's
// assigned members. Members without a linked account are skipped.
func (r *AccountRepository) TaskMemberAccounts(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Joins("JOIN task_members ON task_members.member_id = accounts.member_id").
		Where("task_members.task_id = ?", taskID).
		Where("accounts.status = ? AND accounts.is_deleted = ?", model.AccountActive, false).
		Pluck("accounts.id", &ids).Error
	return ids, err
}
