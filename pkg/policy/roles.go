package policy

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the normalized role tag. Every permission decision runs on this
// tag, never on the raw database role name.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDirector Role = "director"
	RolePMO      Role = "pmo"
	RoleLeader   Role = "leader"
	RoleStaff    Role = "staff"
	RoleUnknown  Role = ""
)

// synonyms maps each role to the spellings observed in production data,
// including the Vietnamese ones. Matching is lower-cased and trimmed.
var synonyms = map[Role][]string{
	RoleAdmin:    {"admin", "system admin", "admin hệ thống"},
	RoleDirector: {"director", "giám đốc"},
	RolePMO:      {"pmo"},
	RoleLeader:   {"leader", "manager", "trưởng phòng", "tp"},
	RoleStaff:    {"staff", "nhân viên", "user"},
}

// Normalize resolves a raw role name to its tag. Unrecognized names return
// RoleUnknown, which every policy rule denies.
func Normalize(name string) Role {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return RoleUnknown
	}
	for role, names := range synonyms {
		for _, n := range names {
			if needle == n {
				return role
			}
		}
	}
	return RoleUnknown
}

// Synonyms returns the accepted spellings for a role, lower-cased. Used by
// the directory queries that match role names in SQL.
func Synonyms(role Role) []string {
	names := synonyms[role]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Actor is the identity context resolved per request from the JWT claims.
type Actor struct {
	AccountID    uuid.UUID
	Username     string
	RoleName     string
	Role         Role
	MemberID     *uuid.UUID
	DepartmentID *uuid.UUID
}

func (a Actor) InDepartment(id uuid.UUID) bool {
	return a.DepartmentID != nil && *a.DepartmentID == id
}
