package policy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/taskdesk/taskdesk/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/workflow"
)

func actorWithRole(name string, dept *uuid.UUID) Actor {
	return Actor{
		AccountID:    uuid.New(),
		Username:     "tester",
		RoleName:     name,
		Role:         Normalize(name),
		DepartmentID: dept,
	}
}

func TestNormalizeSynonyms(t *testing.T) {
	cases := []struct {
		name string
		want Role
	}{
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{"System Admin", RoleAdmin},
		{"admin hệ thống", RoleAdmin},
		{"director", RoleDirector},
		{"Giám đốc", RoleDirector},
		{"PMO", RolePMO},
		{"leader", RoleLeader},
		{"Manager", RoleLeader},
		{"trưởng phòng", RoleLeader},
		{"TP", RoleLeader},
		{"tp ", RoleLeader},
		{"staff", RoleStaff},
		{"Nhân viên", RoleStaff},
		{"user", RoleStaff},
		{"", RoleUnknown},
		{"intern", RoleUnknown},
	}
	for _, tc := range cases {
		if got := Normalize(tc.name); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestProjectPermissions(t *testing.T) {
	p := New(config.PolicyConfig{AdminProjectView: true})

	cases := []struct {
		role    string
		action  Action
		ctx     Context
		allowed bool
	}{
		{"pmo", ProjectCreate, Context{}, true},
		{"PMO", ProjectCreate, Context{}, true},
		{"leader", ProjectCreate, Context{}, false},
		{"staff", ProjectCreate, Context{}, false},
		{"director", ProjectCreate, Context{}, false},
		{"admin", ProjectCreate, Context{}, false},

		{"pmo", ProjectUpdate, Context{}, true},
		{"leader", ProjectUpdate, Context{}, false},
		{"admin", ProjectUpdate, Context{}, false},

		{"director", ProjectTransition, Context{NewStatus: "approved"}, true},
		{"director", ProjectTransition, Context{NewStatus: "rejected"}, true},
		{"director", ProjectTransition, Context{NewStatus: "closed"}, true},
		{"director", ProjectTransition, Context{NewStatus: "active"}, false},
		{"pmo", ProjectTransition, Context{NewStatus: "approved"}, false},
		{"giám đốc", ProjectTransition, Context{NewStatus: "approved"}, true},

		{"pmo", ProjectDelete, Context{}, true},
		{"leader", ProjectDelete, Context{}, false},

		{"admin", ProjectView, Context{}, true},
		{"staff", ProjectView, Context{}, true},
	}
	for _, tc := range cases {
		actor := actorWithRole(tc.role, nil)
		d := p.Authorize(actor, tc.action, tc.ctx)
		if d.Allowed != tc.allowed {
			t.Fatalf("role %q action %q: allowed=%v, want %v (reason %q)",
				tc.role, tc.action, d.Allowed, tc.allowed, d.Reason)
		}
		if !d.Allowed && d.Reason == "" {
			t.Fatalf("role %q action %q: denial without reason", tc.role, tc.action)
		}
	}
}

func TestAdminProjectViewToggle(t *testing.T) {
	p := New(config.PolicyConfig{AdminProjectView: false})
	actor := actorWithRole("admin", nil)
	if d := p.Authorize(actor, ProjectView, Context{}); d.Allowed {
		t.Fatalf("admin project view should be denied when toggle is off")
	}

	p = New(config.PolicyConfig{AdminProjectView: true})
	if d := p.Authorize(actor, ProjectView, Context{}); !d.Allowed {
		t.Fatalf("admin project view should be allowed when toggle is on")
	}
}

func TestTaskCreateMatrix(t *testing.T) {
	p := New(config.PolicyConfig{})
	deptA := uuid.New()
	deptB := uuid.New()
	parentID := uuid.New()

	// PMO creates top-level tasks only.
	pmo := actorWithRole("pmo", nil)
	if d := p.Authorize(pmo, TaskCreate, Context{}); !d.Allowed {
		t.Fatalf("pmo top-level task create denied: %s", d.Reason)
	}
	if d := p.Authorize(pmo, TaskCreate, Context{ParentTaskID: &parentID}); d.Allowed {
		t.Fatalf("pmo subtask create should be denied")
	}

	// Leader creates subtasks in own department for own-department members.
	leader := actorWithRole("leader", &deptA)
	if d := p.Authorize(leader, TaskCreate, Context{
		ParentTaskID:          &parentID,
		TargetDepartmentID:    &deptA,
		AssigneeDepartmentIDs: []uuid.UUID{deptA},
	}); !d.Allowed {
		t.Fatalf("leader subtask create denied: %s", d.Reason)
	}
	if d := p.Authorize(leader, TaskCreate, Context{TargetDepartmentID: &deptA}); d.Allowed {
		t.Fatalf("leader top-level task create should be denied")
	}
	if d := p.Authorize(leader, TaskCreate, Context{
		ParentTaskID:       &parentID,
		TargetDepartmentID: &deptB,
	}); d.Allowed {
		t.Fatalf("leader cross-department subtask should be denied")
	}
	d := p.Authorize(leader, TaskCreate, Context{
		ParentTaskID:          &parentID,
		TargetDepartmentID:    &deptA,
		AssigneeDepartmentIDs: []uuid.UUID{deptA, deptB},
	})
	if d.Allowed {
		t.Fatalf("leader assigning cross-department member should be denied")
	}
	if d.Reason != "chỉ được giao việc cho nhân viên thuộc phòng ban của mình" {
		t.Fatalf("unexpected denial reason: %q", d.Reason)
	}

	// Staff, Director, Admin are denied by default.
	for _, role := range []string{"staff", "director", "admin"} {
		actor := actorWithRole(role, &deptA)
		if d := p.Authorize(actor, TaskCreate, Context{}); d.Allowed {
			t.Fatalf("role %q task create should be denied", role)
		}
	}
}

func TestStaffSelfTasksToggle(t *testing.T) {
	deptA := uuid.New()
	staff := actorWithRole("staff", &deptA)

	p := New(config.PolicyConfig{StaffSelfTasks: true})
	if d := p.Authorize(staff, TaskCreate, Context{SelfAssignOnly: true}); !d.Allowed {
		t.Fatalf("staff self-task should be allowed when toggle is on: %s", d.Reason)
	}
	if d := p.Authorize(staff, TaskCreate, Context{SelfAssignOnly: false}); d.Allowed {
		t.Fatalf("staff assigning others should be denied even with toggle on")
	}

	p = New(config.PolicyConfig{StaffSelfTasks: false})
	if d := p.Authorize(staff, TaskCreate, Context{SelfAssignOnly: true}); d.Allowed {
		t.Fatalf("staff self-task should be denied when toggle is off")
	}
}

func TestTaskUpdateMatrix(t *testing.T) {
	p := New(config.PolicyConfig{})
	deptA := uuid.New()
	deptB := uuid.New()

	cases := []struct {
		role    string
		dept    *uuid.UUID
		ctx     Context
		allowed bool
	}{
		{"director", nil, Context{}, false},
		{"admin", nil, Context{}, false},
		{"pmo", nil, Context{TargetDepartmentID: &deptA}, true},
		{"staff", &deptA, Context{IsAssignee: true}, true},
		{"staff", &deptA, Context{IsAssignee: false}, false},
		{"leader", &deptA, Context{TargetDepartmentID: &deptA}, true},
		{"leader", &deptA, Context{TargetDepartmentID: &deptB}, false},
		{"manager", &deptA, Context{TargetDepartmentID: &deptA}, true},
	}
	for _, tc := range cases {
		actor := actorWithRole(tc.role, tc.dept)
		d := p.Authorize(actor, TaskUpdate, tc.ctx)
		if d.Allowed != tc.allowed {
			t.Fatalf("role %q task update: allowed=%v, want %v (reason %q)",
				tc.role, d.Allowed, tc.allowed, d.Reason)
		}
	}
}

func TestStaffFieldAllowList(t *testing.T) {
	allowed := []string{"status", "progress", "description", "beginDate", "dueDate"}
	for _, f := range allowed {
		if !StaffFieldAllowed(f) {
			t.Fatalf("field %q should be staff-updatable", f)
		}
	}
	denied := []string{"title", "priority", "memberIds", "projectId", ""}
	for _, f := range denied {
		if StaffFieldAllowed(f) {
			t.Fatalf("field %q should not be staff-updatable", f)
		}
	}
}

func TestStaffStatusAllowList(t *testing.T) {
	allowed := []string{"in_progress", "review_request", "waiting_approval", "done", "completed"}
	for _, s := range allowed {
		if !StaffStatusAllowed(s) {
			t.Fatalf("status %q should be staff-settable", s)
		}
	}
	denied := []string{"approved", "rejected", "returned", "deleted", "pending"}
	for _, s := range denied {
		if StaffStatusAllowed(s) {
			t.Fatalf("status %q should not be staff-settable", s)
		}
	}
}

func TestStaffStatusAllowListLegacySpellings(t *testing.T) {
	// The allow-list is keyed by canonical spelling; the hyphen variants
	// reach it through canonicalization.
	for _, s := range []string{"review-request", "waiting-approval", "In_Progress"} {
		if !StaffStatusAllowed(workflow.Canonical(s)) {
			t.Fatalf("canonicalized %q should be staff-settable", s)
		}
	}
	if StaffStatusAllowed("review-request") {
		t.Fatalf("raw hyphen spelling should not hit the allow-list directly")
	}
}

func TestTaskDeleteMatrix(t *testing.T) {
	p := New(config.PolicyConfig{})
	cases := []struct {
		role    string
		allowed bool
	}{
		{"staff", false},
		{"nhân viên", false},
		{"leader", true},
		{"pmo", true},
		{"director", true},
		{"admin", true},
	}
	for _, tc := range cases {
		actor := actorWithRole(tc.role, nil)
		d := p.Authorize(actor, TaskDelete, Context{})
		if d.Allowed != tc.allowed {
			t.Fatalf("role %q task delete: allowed=%v, want %v", tc.role, d.Allowed, tc.allowed)
		}
	}
}

func TestEscalationRoles(t *testing.T) {
	p := New(config.PolicyConfig{})

	if d := p.Authorize(actorWithRole("staff", nil), EscalateToLeader, Context{}); !d.Allowed {
		t.Fatalf("staff escalate to leader denied: %s", d.Reason)
	}
	if d := p.Authorize(actorWithRole("leader", nil), EscalateToLeader, Context{}); d.Allowed {
		t.Fatalf("leader escalate to leader should be denied")
	}
	if d := p.Authorize(actorWithRole("leader", nil), EscalateToPMO, Context{}); !d.Allowed {
		t.Fatalf("leader escalate to pmo denied: %s", d.Reason)
	}
	if d := p.Authorize(actorWithRole("staff", nil), EscalateToPMO, Context{}); d.Allowed {
		t.Fatalf("staff escalate to pmo should be denied")
	}
}

func TestUnknownRoleAlwaysDenied(t *testing.T) {
	p := New(config.PolicyConfig{StaffSelfTasks: true, AdminProjectView: true})
	actor := actorWithRole("intern", nil)

	actions := []Action{ProjectCreate, ProjectUpdate, ProjectTransition, ProjectDelete, TaskCreate, TaskUpdate, TaskDelete, EscalateToLeader, EscalateToPMO}
	for _, action := range actions {
		if d := p.Authorize(actor, action, Context{}); d.Allowed {
			t.Fatalf("unknown role should be denied action %q", action)
		}
	}
}
