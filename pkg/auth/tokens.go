package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carry the identity context: account, role, member and department.
// Role/member/department ride in the token so request handling needs no
// extra lookups.
type Claims struct {
	jwt.RegisteredClaims
	AccountID    string `json:"account_id"`
	Username     string `json:"username"`
	RoleName     string `json:"role_name"`
	MemberID     string `json:"member_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	TokenKind    string `json:"kind"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenManager struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(signingKey []byte, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{signingKey: signingKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueTokens signs an access/refresh pair for an account.
func (m *TokenManager) IssueTokens(account *model.Account) (TokenPair, error) {
	access, err := m.sign(account, "access", m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.sign(account, "refresh", m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) sign(account *model.Account, kind string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   account.ID.String(),
			Issuer:    "taskdesk",
		},
		AccountID: account.ID.String(),
		Username:  account.Username,
		TokenKind: kind,
	}
	if account.Role != nil {
		claims.RoleName = account.Role.Name
	}
	if account.MemberID != nil {
		claims.MemberID = account.MemberID.String()
		if account.Member != nil && account.Member.DepartmentID != nil {
			claims.DepartmentID = account.Member.DepartmentID.String()
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Validate parses a token and returns its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Actor converts validated claims into the policy actor.
func (c *Claims) Actor() policy.Actor {
	actor := policy.Actor{
		Username: c.Username,
		RoleName: c.RoleName,
		Role:     policy.Normalize(c.RoleName),
	}
	if id, err := uuid.Parse(c.AccountID); err == nil {
		actor.AccountID = id
	}
	if c.MemberID != "" {
		if id, err := uuid.Parse(c.MemberID); err == nil {
			actor.MemberID = &id
		}
	}
	if c.DepartmentID != "" {
		if id, err := uuid.Parse(c.DepartmentID); err == nil {
			actor.DepartmentID = &id
		}
	}
	return actor
}
