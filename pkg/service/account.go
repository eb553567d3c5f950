package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

type AccountService struct {
	accounts   *postgres.AccountRepository
	db         *gorm.DB
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

func NewAccountService(accounts *postgres.AccountRepository, db *gorm.DB, dispatcher *events.Dispatcher, logger *zap.Logger) *AccountService {
	return &AccountService{accounts: accounts, db: db, dispatcher: dispatcher, logger: logger}
}

// AccountResponse is the safe projection of an account: no password hash,
// no reset token.
type AccountResponse struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	Avatar         string     `json:"avatar,omitempty"`
	RoleName       string     `json:"roleName,omitempty"`
	Status         string     `json:"status"`
	MemberID       *uuid.UUID `json:"memberId,omitempty"`
	FullName       string     `json:"fullName,omitempty"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	DepartmentID   *uuid.UUID `json:"departmentId,omitempty"`
	DepartmentName string     `json:"departmentName,omitempty"`
	IsDeleted      bool       `json:"isDeleted"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toAccountResponse(a *model.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Avatar:    a.Avatar,
		Status:    string(a.Status),
		MemberID:  a.MemberID,
		IsDeleted: a.IsDeleted,
		CreatedAt: a.CreatedAt,
	}
	if a.Role != nil {
		resp.RoleName = a.Role.Name
	}
	if a.Member != nil {
		resp.FullName = a.Member.FullName
		resp.PhoneNumber = a.Member.PhoneNumber
		resp.DepartmentID = a.Member.DepartmentID
		if a.Member.Department != nil {
			resp.DepartmentName = a.Member.Department.Name
		}
	}
	return resp
}

type CreateAccountInput struct {
	Username     string     `json:"username"`
	Password     string     `json:"password"`
	Email        string     `json:"email"`
	RoleID       uuid.UUID  `json:"roleId"`
	FullName     string     `json:"fullName"`
	PhoneNumber  string     `json:"phoneNumber"`
	DepartmentID *uuid.UUID `json:"departmentId"`
}

// Create makes an account with its linked member in one transaction. Admin
// only.
func (s *AccountService) Create(ctx context.Context, actor policy.Actor, in CreateAccountInput) Result {
	if actor.Role != policy.RoleAdmin {
		return Forbidden("chỉ admin mới được tạo tài khoản")
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" || in.FullName == "" {
		return BadRequest("thiếu tên đăng nhập, mật khẩu hoặc họ tên")
	}
	if len(in.Password) < 6 {
		return BadRequest("mật khẩu phải có ít nhất 6 ký tự")
	}
	if in.RoleID == uuid.Nil {
		return BadRequest("thiếu vai trò")
	}

	taken, err := s.accounts.UsernameOrEmailTaken(ctx, in.Username, in.Email, nil)
	if err != nil {
		s.logger.Error("account uniqueness check failed", zap.Error(err))
		return Internal()
	}
	if taken {
		return BadRequest("tên đăng nhập hoặc email đã tồn tại")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hash failed", zap.Error(err))
		return Internal()
	}

	account := &model.Account{
		Username: in.Username,
		Password: string(hash),
		Email:    in.Email,
		RoleID:   in.RoleID,
		Status:   model.AccountActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := &model.Member{
			FullName:     in.FullName,
			PhoneNumber:  in.PhoneNumber,
			DepartmentID: in.DepartmentID,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		account.MemberID = &member.ID
		return tx.Create(account).Error
	})
	if err != nil {
		s.logger.Error("account create failed", zap.String("username", in.Username), zap.Error(err))
		return Internal()
	}

	created, err := s.accounts.GetByID(ctx, account.ID)
	if err != nil {
		s.logger.Error("account reload failed", zap.Error(err))
		return Internal()
	}

	ev := events.New(events.UserCreated, actor.AccountID)
	ev.ActorName = actor.Username
	ev.Detail = created.Username
	ev.TargetType = "account"
	ev.TargetID = created.ID.String()
	s.dispatcher.Dispatch(ctx, ev)

	return Created(toAccountResponse(created))
}

type ListAccountsInput struct {
	Status       string
	RoleID       *uuid.UUID
	DepartmentID *uuid.UUID
	Search       string
	Limit        int
	Offset       int
}

func (s *AccountService) List(ctx context.Context, actor policy.Actor, in ListAccountsInput) Result {
	if actor.Role != policy.RoleAdmin && actor.Role != policy.RoleDirector && actor.Role != policy.RolePMO {
		// Leaders see only their own department.
		if actor.Role == policy.RoleLeader && actor.DepartmentID != nil {
			in.DepartmentID = actor.DepartmentID
		} else {
			return Forbidden("bạn không có quyền xem danh sách tài khoản")
		}
	}

	if in.Limit <= 0 || in.Limit > 200 {
		in.Limit = 50
	}

	accounts, total, err := s.accounts.List(ctx, postgres.AccountFilter{
		Status:       in.Status,
		RoleID:       in.RoleID,
		DepartmentID: in.DepartmentID,
		Search:       in.Search,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		s.logger.Error("account list failed", zap.Error(err))
		return Internal()
	}

	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	return OK(map[string]interface{}{
		"accounts": out,
		"total":    total,
		"limit":    in.Limit,
		"offset":   in.Offset,
	})
}

func (s *AccountService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	if actor.Role != policy.RoleAdmin && actor.AccountID != id {
		return Forbidden("bạn không có quyền xem tài khoản này")
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("tài khoản không tồn tại")
		}
		s.logger.Error("account get failed", zap.Error(err))
		return Internal()
	}
	return OK(toAccountResponse(account))
}

type UpdateAccountInput struct {
	Email        *string    `json:"email"`
	RoleID       *uuid.UUID `json:"roleId"`
	Status       *string    `json:"status"`
	FullName     *string    `json:"fullName"`
	PhoneNumber  *string    `json:"phoneNumber"`
	DepartmentID *uuid.UUID `json:"departmentId"`
}

func (s *AccountService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateAccountInput) Result {
	if actor.Role != policy.RoleAdmin {
		return Forbidden("chỉ admin mới được sửa tài khoản")
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("tài khoản không tồn tại")
		}
		s.logger.Error("account get failed", zap.Error(err))
		return Internal()
	}
	if account.IsDeleted {
		return NotFound("tài khoản không tồn tại")
	}

	accountUpdates := map[string]interface{}{}
	if in.Email != nil {
		taken, err := s.accounts.UsernameOrEmailTaken(ctx, "", *in.Email, &id)
		if err != nil {
			s.logger.Error("account uniqueness check failed", zap.Error(err))
			return Internal()
		}
		if taken {
			return BadRequest("email đã tồn tại")
		}
		accountUpdates["email"] = *in.Email
	}
	if in.RoleID != nil {
		accountUpdates["role_id"] = *in.RoleID
	}
	if in.Status != nil {
		switch model.AccountStatus(*in.Status) {
		case model.AccountActive, model.AccountInactive, model.AccountLocked:
		default:
			return BadRequest("trạng thái tài khoản không hợp lệ")
		}
		accountUpdates["status"] = *in.Status
		if *in.Status == string(model.AccountActive) {
			accountUpdates["failed_attempts"] = 0
			accountUpdates["locked_until"] = nil
		}
	}

	memberUpdates := map[string]interface{}{}
	if in.FullName != nil {
		memberUpdates["full_name"] = *in.FullName
	}
	if in.PhoneNumber != nil {
		memberUpdates["phone_number"] = *in.PhoneNumber
	}
	if in.DepartmentID != nil {
		memberUpdates["department_id"] = *in.DepartmentID
	}

	if len(accountUpdates) == 0 && len(memberUpdates) == 0 {
		return BadRequest("không có trường nào để cập nhật")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(accountUpdates) > 0 {
			if err := tx.Model(&model.Account{}).Where("id = ?", id).Updates(accountUpdates).Error; err != nil {
				return err
			}
		}
		if len(memberUpdates) > 0 && account.MemberID != nil {
			if err := tx.Model(&model.Member{}).Where("id = ?", *account.MemberID).Updates(memberUpdates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("account update failed", zap.String("account_id", id.String()), zap.Error(err))
		return Internal()
	}

	updated, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("account reload failed", zap.Error(err))
		return Internal()
	}

	ev := events.New(events.UserUpdated, actor.AccountID)
	ev.ActorName = actor.Username
	ev.Detail = updated.Username
	ev.TargetType = "account"
	ev.TargetID = id.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OK(toAccountResponse(updated))
}

// Delete soft-deletes an account. The row stays for audit joins.
func (s *AccountService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	if actor.Role != policy.RoleAdmin {
		return Forbidden("chỉ admin mới được xóa tài khoản")
	}
	if actor.AccountID == id {
		return BadRequest("không thể tự xóa tài khoản của mình")
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("tài khoản không tồn tại")
		}
		s.logger.Error("account get failed", zap.Error(err))
		return Internal()
	}
	if account.IsDeleted {
		return NotFound("tài khoản không tồn tại")
	}

	now := time.Now().UTC()
	err = s.accounts.Updates(ctx, id, map[string]interface{}{
		"is_deleted": true,
		"deleted_at": now,
		"deleted_by": actor.AccountID,
		"status":     model.AccountInactive,
	})
	if err != nil {
		s.logger.Error("account delete failed", zap.String("account_id", id.String()), zap.Error(err))
		return Internal()
	}

	ev := events.New(events.UserDeleted, actor.AccountID)
	ev.ActorName = actor.Username
	ev.Detail = account.Username
	ev.TargetType = "account"
	ev.TargetID = id.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OKMessage("xóa tài khoản thành công")
}

func (s *AccountService) Restore(ctx context.Context, actor policy.Actor, id uuid.UUID) Result {
	if actor.Role != policy.RoleAdmin {
		return Forbidden("chỉ admin mới được khôi phục tài khoản")
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("tài khoản không tồn tại")
		}
		s.logger.Error("account get failed", zap.Error(err))
		return Internal()
	}
	if !account.IsDeleted {
		return BadRequest("tài khoản chưa bị xóa")
	}

	err = s.accounts.Updates(ctx, id, map[string]interface{}{
		"is_deleted": false,
		"deleted_at": nil,
		"deleted_by": nil,
		"status":     model.AccountActive,
	})
	if err != nil {
		s.logger.Error("account restore failed", zap.String("account_id", id.String()), zap.Error(err))
		return Internal()
	}

	ev := events.New(events.UserRestored, actor.AccountID)
	ev.ActorName = actor.Username
	ev.Detail = account.Username
	ev.TargetType = "account"
	ev.TargetID = id.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OKMessage("khôi phục tài khoản thành công")
}
