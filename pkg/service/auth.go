package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/auth"
	"github.com/taskdesk/taskdesk/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/metrics"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

// Mailer delivers password-reset mail. SMTP wiring stays outside the
// service; a no-op implementation is fine in development.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

type NopMailer struct{}

func (NopMailer) SendPasswordReset(context.Context, string, string) error { return nil }

// AccountStore is the slice of the account repository the auth flows need.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByResetToken(ctx context.Context, token string) (*model.Account, error)
	Updates(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type AuthService struct {
	accounts   AccountStore
	tokens     *auth.TokenManager
	dispatcher *events.Dispatcher
	mailer     Mailer
	cfg        config.AuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	accounts AccountStore,
	tokens *auth.TokenManager,
	dispatcher *events.Dispatcher,
	mailer Mailer,
	cfg config.AuthConfig,
	logger *zap.Logger,
) *AuthService {
	if mailer == nil {
		mailer = NopMailer{}
	}
	return &AuthService{
		accounts:   accounts,
		tokens:     tokens,
		dispatcher: dispatcher,
		mailer:     mailer,
		cfg:        cfg,
		logger:     logger,
	}
}

type LoginResponse struct {
	Tokens  auth.TokenPair  `json:"tokens"`
	Account AccountResponse `json:"account"`
}

// Login verifies credentials and enforces the lockout window: after
// MaxLoginFails consecutive failures the account is locked for
// LockoutDuration and every attempt inside the window gets 423 regardless
// of password correctness.
func (s *AuthService) Login(ctx context.Context, username, password string) Result {
	if username == "" || password == "" {
		return BadRequest("thiếu tên đăng nhập hoặc mật khẩu")
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
			return Unauthorized("tên đăng nhập hoặc mật khẩu không đúng")
		}
		s.logger.Error("login lookup failed", zap.String("username", username), zap.Error(err))
		return Internal()
	}

	if account.IsDeleted || account.Status == model.AccountInactive {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		return Unauthorized("tài khoản không còn hoạt động")
	}

	now := time.Now().UTC()
	if account.LockedUntil != nil && now.Before(*account.LockedUntil) {
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return Locked(fmt.Sprintf("tài khoản bị khóa đến %s do đăng nhập sai nhiều lần",
			account.LockedUntil.Format("15:04 02/01/2006")))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return s.recordFailedLogin(ctx, account, now)
	}

	updates := map[string]interface{}{
		"failed_attempts": 0,
		"locked_until":    nil,
		"last_active_at":  now,
	}
	if account.Status == model.AccountLocked {
		updates["status"] = model.AccountActive
	}
	if err := s.accounts.Updates(ctx, account.ID, updates); err != nil {
		s.logger.Error("login state update failed", zap.String("account_id", account.ID.String()), zap.Error(err))
		return Internal()
	}

	pair, err := s.tokens.IssueTokens(account)
	if err != nil {
		s.logger.Error("token issuance failed", zap.String("account_id", account.ID.String()), zap.Error(err))
		return Internal()
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()

	ev := events.New(events.LoggedIn, account.ID)
	ev.ActorName = account.Username
	ev.TargetType = "account"
	ev.TargetID = account.ID.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OK(LoginResponse{Tokens: pair, Account: toAccountResponse(account)})
}

func (s *AuthService) recordFailedLogin(ctx context.Context, account *model.Account, now time.Time) Result {
	attempts := account.FailedAttempts + 1
	updates := map[string]interface{}{"failed_attempts": attempts}

	locked := attempts >= s.cfg.MaxLoginFails
	if locked {
		until := now.Add(s.cfg.LockoutDuration)
		updates["locked_until"] = until
		updates["status"] = model.AccountLocked
	}

	if err := s.accounts.Updates(ctx, account.ID, updates); err != nil {
		s.logger.Error("failed-login counter update failed",
			zap.String("account_id", account.ID.String()), zap.Error(err))
	}

	ev := events.New(events.LoginFailed, account.ID)
	ev.ActorName = account.Username
	ev.TargetType = "account"
	ev.TargetID = account.ID.String()
	ev.Detail = fmt.Sprintf("lần thứ %d", attempts)
	s.dispatcher.Dispatch(ctx, ev)

	if locked {
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return Locked(fmt.Sprintf("tài khoản bị khóa %d phút do đăng nhập sai %d lần",
			int(s.cfg.LockoutDuration.Minutes()), attempts))
	}
	metrics.LoginsTotal.WithLabelValues("failed").Inc()
	return Unauthorized("tên đăng nhập hoặc mật khẩu không đúng")
}

// Me returns the caller's own account profile.
func (s *AuthService) Me(ctx context.Context, actor policy.Actor) Result {
	account, err := s.accounts.GetByID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("tài khoản không tồn tại")
		}
		s.logger.Error("me lookup failed", zap.Error(err))
		return Internal()
	}
	return OK(toAccountResponse(account))
}

func (s *AuthService) ChangePassword(ctx context.Context, actor policy.Actor, oldPassword, newPassword string) Result {
	if len(newPassword) < 6 {
		return BadRequest("mật khẩu mới phải có ít nhất 6 ký tự")
	}

	account, err := s.accounts.GetByID(ctx, actor.AccountID)
	if err != nil {
		s.logger.Error("change-password lookup failed", zap.Error(err))
		return Internal()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(oldPassword)); err != nil {
		return BadRequest("mật khẩu hiện tại không đúng")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hash failed", zap.Error(err))
		return Internal()
	}

	if err := s.accounts.Updates(ctx, account.ID, map[string]interface{}{"password": string(hash)}); err != nil {
		s.logger.Error("password update failed", zap.Error(err))
		return Internal()
	}

	ev := events.New(events.PasswordChanged, actor.AccountID)
	ev.ActorName = account.Username
	ev.TargetType = "account"
	ev.TargetID = account.ID.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OKMessage("đổi mật khẩu thành công")
}

// ForgotPassword issues a reset token. The response never reveals whether
// the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) Result {
	const reply = "nếu email tồn tại, hướng dẫn đặt lại mật khẩu đã được gửi"

	if email == "" {
		return BadRequest("thiếu email")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OKMessage(reply)
		}
		s.logger.Error("forgot-password lookup failed", zap.Error(err))
		return Internal()
	}

	token := uuid.New().String()
	expires := time.Now().UTC().Add(s.cfg.ResetTokenTTL)
	updates := map[string]interface{}{
		"reset_token":         token,
		"reset_token_expires": expires,
	}
	if err := s.accounts.Updates(ctx, account.ID, updates); err != nil {
		s.logger.Error("reset token persist failed", zap.Error(err))
		return Internal()
	}

	if err := s.mailer.SendPasswordReset(ctx, email, token); err != nil {
		s.logger.Warn("reset mail delivery failed", zap.String("email", email), zap.Error(err))
	}

	return OKMessage(reply)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) Result {
	if token == "" {
		return BadRequest("thiếu token đặt lại mật khẩu")
	}
	if len(newPassword) < 6 {
		return BadRequest("mật khẩu mới phải có ít nhất 6 ký tự")
	}

	account, err := s.accounts.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BadRequest("token không hợp lệ hoặc đã hết hạn")
		}
		s.logger.Error("reset-password lookup failed", zap.Error(err))
		return Internal()
	}

	if account.ResetTokenExpires == nil || time.Now().UTC().After(*account.ResetTokenExpires) {
		return BadRequest("token không hợp lệ hoặc đã hết hạn")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hash failed", zap.Error(err))
		return Internal()
	}

	updates := map[string]interface{}{
		"password":            string(hash),
		"reset_token":         "",
		"reset_token_expires": nil,
		"failed_attempts":     0,
		"locked_until":        nil,
	}
	if err := s.accounts.Updates(ctx, account.ID, updates); err != nil {
		s.logger.Error("password reset update failed", zap.Error(err))
		return Internal()
	}

	ev := events.New(events.PasswordReset, account.ID)
	ev.ActorName = account.Username
	ev.TargetType = "account"
	ev.TargetID = account.ID.String()
	s.dispatcher.Dispatch(ctx, ev)

	return OKMessage("đặt lại mật khẩu thành công")
}
