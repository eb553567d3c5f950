package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/auth"
	"github.com/taskdesk/taskdesk/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/model"
)

type fakeAccounts struct {
	account *model.Account
}

func (f *fakeAccounts) get(match bool) (*model.Account, error) {
	if f.account == nil || !match {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.account
	return &copied, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	return f.get(f.account != nil && f.account.ID == id)
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	return f.get(f.account != nil && f.account.Username == username)
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	return f.get(f.account != nil && f.account.Email == email)
}

func (f *fakeAccounts) GetByResetToken(_ context.Context, token string) (*model.Account, error) {
	return f.get(f.account != nil && token != "" && f.account.ResetToken == token)
}

func (f *fakeAccounts) Updates(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if f.account == nil || f.account.ID != id {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "failed_attempts":
			f.account.FailedAttempts = value.(int)
		case "locked_until":
			if value == nil {
				f.account.LockedUntil = nil
			} else {
				v := value.(time.Time)
				f.account.LockedUntil = &v
			}
		case "status":
			f.account.Status = value.(model.AccountStatus)
		case "last_active_at":
			v := value.(time.Time)
			f.account.LastActiveAt = &v
		case "password":
			f.account.Password = value.(string)
		case "reset_token":
			f.account.ResetToken = value.(string)
		case "reset_token_expires":
			if value == nil {
				f.account.ResetTokenExpires = nil
			} else {
				v := value.(time.Time)
				f.account.ResetTokenExpires = &v
			}
		}
	}
	return nil
}

func newAuthFixture(t *testing.T, password string) (*AuthService, *fakeAccounts) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := &fakeAccounts{account: &model.Account{
		ID:       uuid.New(),
		Username: "thu.pham",
		Email:    "thu.pham@example.com",
		Password: string(hash),
		Status:   model.AccountActive,
		Role:     &model.Role{Name: "Staff"},
	}}
	svc := NewAuthService(
		store,
		auth.NewTokenManager([]byte("test-signing-key"), time.Hour, time.Hour),
		events.NewDispatcher(nil, nil, nil, nil, zap.NewNop()),
		NopMailer{},
		config.AuthConfig{MaxLoginFails: 5, LockoutDuration: 30 * time.Minute},
		zap.NewNop(),
	)
	return svc, store
}

func TestLoginRejections(t *testing.T) {
	svc, _ := newAuthFixture(t, "mật-khẩu-đúng")
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		want     int
	}{
		{"empty username", "", "x", http.StatusBadRequest},
		{"empty password", "thu.pham", "", http.StatusBadRequest},
		{"unknown user", "ai-do", "x", http.StatusUnauthorized},
		{"wrong password", "thu.pham", "sai", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if res := svc.Login(ctx, tc.username, tc.password); res.Status != tc.want {
			t.Fatalf("%s: status %d, want %d (message %q)", tc.name, res.Status, tc.want, res.Message)
		}
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, store := newAuthFixture(t, "mật-khẩu-đúng")
	store.account.Status = model.AccountInactive

	res := svc.Login(context.Background(), "thu.pham", "mật-khẩu-đúng")
	if res.Status != http.StatusUnauthorized {
		t.Fatalf("inactive account login: status %d, want 401", res.Status)
	}
}

func TestLoginLockout(t *testing.T) {
	svc, store := newAuthFixture(t, "mật-khẩu-đúng")
	ctx := context.Background()

	// Four failures increment the counter but stay 401.
	for i := 1; i <= 4; i++ {
		res := svc.Login(ctx, "thu.pham", "sai")
		if res.Status != http.StatusUnauthorized {
			t.Fatalf("failure %d: status %d, want 401", i, res.Status)
		}
		if store.account.FailedAttempts != i {
			t.Fatalf("failure %d: counter %d", i, store.account.FailedAttempts)
		}
		if store.account.LockedUntil != nil {
			t.Fatalf("failure %d: locked early", i)
		}
	}

	// The fifth failure locks the account for the configured window.
	res := svc.Login(ctx, "thu.pham", "sai")
	if res.Status != http.StatusLocked {
		t.Fatalf("fifth failure: status %d, want 423", res.Status)
	}
	if store.account.Status != model.AccountLocked {
		t.Fatalf("fifth failure: account status %q", store.account.Status)
	}
	if store.account.LockedUntil == nil {
		t.Fatalf("fifth failure: no lock window set")
	}
	remaining := time.Until(*store.account.LockedUntil)
	if remaining < 29*time.Minute || remaining > 31*time.Minute {
		t.Fatalf("lock window %s, want ~30m", remaining)
	}

	// Inside the window every attempt is 423, even with the right password.
	if res := svc.Login(ctx, "thu.pham", "mật-khẩu-đúng"); res.Status != http.StatusLocked {
		t.Fatalf("correct password inside window: status %d, want 423", res.Status)
	}
	if res := svc.Login(ctx, "thu.pham", "sai"); res.Status != http.StatusLocked {
		t.Fatalf("wrong password inside window: status %d, want 423", res.Status)
	}

	// After the window expires a successful login clears the lock state.
	expired := time.Now().UTC().Add(-time.Minute)
	store.account.LockedUntil = &expired

	res = svc.Login(ctx, "thu.pham", "mật-khẩu-đúng")
	if res.Status != http.StatusOK {
		t.Fatalf("login after window: status %d (message %q)", res.Status, res.Message)
	}
	if store.account.FailedAttempts != 0 {
		t.Fatalf("counter not reset: %d", store.account.FailedAttempts)
	}
	if store.account.LockedUntil != nil {
		t.Fatalf("lock window not cleared")
	}
	if store.account.Status != model.AccountActive {
		t.Fatalf("account not reactivated: %q", store.account.Status)
	}
	login, ok := res.Data.(LoginResponse)
	if !ok {
		t.Fatalf("login response type %T", res.Data)
	}
	if login.Tokens.Access == "" || login.Tokens.Refresh == "" {
		t.Fatalf("empty tokens after login")
	}
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	svc, store := newAuthFixture(t, "mật-khẩu-đúng")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Login(ctx, "thu.pham", "sai")
	}
	if store.account.FailedAttempts != 3 {
		t.Fatalf("counter %d after 3 failures", store.account.FailedAttempts)
	}

	if res := svc.Login(ctx, "thu.pham", "mật-khẩu-đúng"); res.Status != http.StatusOK {
		t.Fatalf("login: status %d", res.Status)
	}
	if store.account.FailedAttempts != 0 {
		t.Fatalf("counter not reset: %d", store.account.FailedAttempts)
	}
	if store.account.LastActiveAt == nil {
		t.Fatalf("last active timestamp not stamped")
	}
}

func TestResetPasswordClearsLockState(t *testing.T) {
	svc, store := newAuthFixture(t, "mật-khẩu-cũ")
	until := time.Now().UTC().Add(10 * time.Minute)
	expires := time.Now().UTC().Add(time.Hour)
	store.account.FailedAttempts = 5
	store.account.LockedUntil = &until
	store.account.ResetToken = "token-123"
	store.account.ResetTokenExpires = &expires

	res := svc.ResetPassword(context.Background(), "token-123", "mật-khẩu-mới")
	if res.Status != http.StatusOK {
		t.Fatalf("reset: status %d (message %q)", res.Status, res.Message)
	}
	if store.account.FailedAttempts != 0 || store.account.LockedUntil != nil {
		t.Fatalf("reset did not clear lockout state")
	}
	if store.account.ResetToken != "" || store.account.ResetTokenExpires != nil {
		t.Fatalf("reset token not consumed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(store.account.Password), []byte("mật-khẩu-mới")); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
}
