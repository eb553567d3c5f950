package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

func testAccount() *model.Account {
	deptID := uuid.New()
	memberID := uuid.New()
	return &model.Account{
		ID:       uuid.New(),
		Username: "lan.nguyen",
		Role:     &model.Role{Name: "Trưởng phòng"},
		MemberID: &memberID,
		Member: &model.Member{
			ID:           memberID,
			DepartmentID: &deptID,
		},
	}
}

func TestIssueAndValidate(t *testing.T) {
	m := NewTokenManager([]byte("test-signing-key"), time.Hour, 24*time.Hour)
	account := testAccount()

	pair, err := m.IssueTokens(account)
	if err != nil {
		t.Fatalf("IssueTokens: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("empty token in pair: %+v", pair)
	}

	claims, err := m.Validate(pair.Access)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.TokenKind != "access" {
		t.Fatalf("access token kind = %q", claims.TokenKind)
	}
	if claims.AccountID != account.ID.String() {
		t.Fatalf("claims account %q, want %q", claims.AccountID, account.ID)
	}
	if claims.Username != "lan.nguyen" {
		t.Fatalf("claims username %q", claims.Username)
	}
	if claims.RoleName != "Trưởng phòng" {
		t.Fatalf("claims role %q", claims.RoleName)
	}

	refreshClaims, err := m.Validate(pair.Refresh)
	if err != nil {
		t.Fatalf("Validate refresh: %v", err)
	}
	if refreshClaims.TokenKind != "refresh" {
		t.Fatalf("refresh token kind = %q", refreshClaims.TokenKind)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := NewTokenManager([]byte("key-a"), time.Hour, time.Hour)
	verifier := NewTokenManager([]byte("key-b"), time.Hour, time.Hour)

	pair, err := issuer.IssueTokens(testAccount())
	if err != nil {
		t.Fatalf("IssueTokens: %v", err)
	}
	if _, err := verifier.Validate(pair.Access); err == nil {
		t.Fatalf("token signed with a different key accepted")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager([]byte("test-signing-key"), -time.Minute, -time.Minute)
	pair, err := m.IssueTokens(testAccount())
	if err != nil {
		t.Fatalf("IssueTokens: %v", err)
	}
	if _, err := m.Validate(pair.Access); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewTokenManager([]byte("test-signing-key"), time.Hour, time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Validate(tok); err == nil {
			t.Fatalf("garbage token %q accepted", tok)
		}
	}
}

func TestClaimsActor(t *testing.T) {
	m := NewTokenManager([]byte("test-signing-key"), time.Hour, time.Hour)
	account := testAccount()

	pair, err := m.IssueTokens(account)
	if err != nil {
		t.Fatalf("IssueTokens: %v", err)
	}
	claims, err := m.Validate(pair.Access)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	actor := claims.Actor()
	if actor.AccountID != account.ID {
		t.Fatalf("actor account %s, want %s", actor.AccountID, account.ID)
	}
	if actor.Role != policy.RoleLeader {
		t.Fatalf("actor role %q, want leader", actor.Role)
	}
	if actor.MemberID == nil || *actor.MemberID != *account.MemberID {
		t.Fatalf("actor member id not carried")
	}
	if actor.DepartmentID == nil || *actor.DepartmentID != *account.Member.DepartmentID {
		t.Fatalf("actor department id not carried")
	}
}
