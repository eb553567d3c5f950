package policy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/taskdesk/taskdesk/pkg/config"
)

type Action string

const (
	ProjectCreate     Action = "project:create"
	ProjectView       Action = "project:view"
	ProjectUpdate     Action = "project:update"
	ProjectTransition Action = "project:transition"
	ProjectDelete     Action = "project:delete"
	TaskCreate        Action = "task:create"
	TaskUpdate        Action = "task:update"
	TaskDelete        Action = "task:delete"
	EscalateToLeader  Action = "escalate:leader"
	EscalateToPMO     Action = "escalate:pmo"
)

// Context carries the target attributes a rule may need beyond the actor.
type Context struct {
	// TargetDepartmentID is the department owning the target project.
	TargetDepartmentID *uuid.UUID
	// ParentTaskID is set when a task is created as a subtask.
	ParentTaskID *uuid.UUID
	// AssigneeDepartmentIDs are the departments of the members being
	// assigned on task creation.
	AssigneeDepartmentIDs []uuid.UUID
	// SelfAssignOnly is true when every assigned member is the actor.
	SelfAssignOnly bool
	// IsAssignee is true when the actor is an assigned member of the task.
	IsAssignee bool
	// NewStatus is the requested project status on ProjectTransition.
	NewStatus string
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...interface{}) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Policy is the single source of truth for role permissions. All mutating
// services consult it before touching storage.
type Policy struct {
	staffSelfTasks   bool
	adminProjectView bool
}

func New(cfg config.PolicyConfig) *Policy {
	return &Policy{
		staffSelfTasks:   cfg.StaffSelfTasks,
		adminProjectView: cfg.AdminProjectView,
	}
}

var directorProjectStatuses = map[string]bool{
	"approved": true,
	"rejected": true,
	"closed":   true,
}

// staffUpdatableFields is the full set of task fields Staff may write.
// Anything outside this list is a hard denial even for assignees.
var staffUpdatableFields = map[string]bool{
	"status":      true,
	"progress":    true,
	"description": true,
	"beginDate":   true,
	"dueDate":     true,
}

// staffAllowedStatuses is the subset of status values Staff may set, keyed
// by canonical spelling. Callers canonicalize first so the legacy hyphen
// variants resolve to the same family.
var staffAllowedStatuses = map[string]bool{
	"in_progress":      true,
	"review_request":   true,
	"waiting_approval": true,
	"done":             true,
	"completed":        true,
}

func StaffFieldAllowed(field string) bool {
	return staffUpdatableFields[field]
}

func StaffStatusAllowed(status string) bool {
	return staffAllowedStatuses[status]
}

func (p *Policy) Authorize(actor Actor, action Action, ctx Context) Decision {
	role := actor.Role
	if role == RoleUnknown {
		role = Normalize(actor.RoleName)
	}

	switch action {
	case ProjectCreate:
		if role != RolePMO {
			return deny("vai trò '%s' không được tạo dự án, chỉ PMO được phép", actor.RoleName)
		}
		return allow()

	case ProjectView:
		if role == RoleAdmin && !p.adminProjectView {
			return deny("admin không thể xem danh sách dự án")
		}
		return allow()

	case ProjectUpdate:
		if role != RolePMO {
			return deny("vai trò '%s' không được sửa dự án", actor.RoleName)
		}
		return allow()

	case ProjectTransition:
		if role != RoleDirector {
			return deny("chỉ Giám đốc mới được phê duyệt, từ chối hoặc đóng dự án")
		}
		if !directorProjectStatuses[ctx.NewStatus] {
			return deny("trạng thái '%s' không hợp lệ cho phê duyệt dự án", ctx.NewStatus)
		}
		return allow()

	case ProjectDelete:
		if role != RolePMO {
			return deny("vai trò '%s' không được xóa dự án, chỉ PMO được phép", actor.RoleName)
		}
		return allow()

	case TaskCreate:
		return p.authorizeTaskCreate(actor, role, ctx)

	case TaskUpdate:
		switch role {
		case RoleDirector:
			return deny("Giám đốc chỉ được xem công việc")
		case RoleAdmin:
			return deny("admin không được sửa công việc")
		case RoleStaff:
			if !ctx.IsAssignee {
				return deny("bạn không được giao công việc này")
			}
			return allow()
		case RoleLeader:
			if ctx.TargetDepartmentID != nil && !actor.InDepartment(*ctx.TargetDepartmentID) {
				return deny("chỉ được sửa công việc thuộc phòng ban của mình")
			}
			return allow()
		case RolePMO:
			return allow()
		}
		return deny("vai trò '%s' không được sửa công việc", actor.RoleName)

	case TaskDelete:
		switch role {
		case RoleStaff:
			return deny("nhân viên không được xóa công việc")
		case RolePMO, RoleLeader, RoleDirector, RoleAdmin:
			return allow()
		}
		return deny("vai trò '%s' không được xóa công việc", actor.RoleName)

	case EscalateToLeader:
		if role != RoleStaff {
			return deny("chỉ Staff mới có thể escalate lên Leader")
		}
		return allow()

	case EscalateToPMO:
		if role != RoleLeader {
			return deny("chỉ Leader mới có thể escalate lên PMO")
		}
		return allow()
	}

	return deny("hành động không được hỗ trợ")
}

func (p *Policy) authorizeTaskCreate(actor Actor, role Role, ctx Context) Decision {
	switch role {
	case RolePMO:
		if ctx.ParentTaskID != nil {
			return deny("PMO chỉ tạo công việc chính, không tạo công việc con")
		}
		return allow()
	case RoleLeader:
		if ctx.ParentTaskID == nil {
			return deny("Leader chỉ được tạo công việc con, cần parentTaskId")
		}
		if ctx.TargetDepartmentID != nil && !actor.InDepartment(*ctx.TargetDepartmentID) {
			return deny("chỉ được tạo công việc trong dự án thuộc phòng ban của mình")
		}
		for _, dept := range ctx.AssigneeDepartmentIDs {
			if !actor.InDepartment(dept) {
				return deny("chỉ được giao việc cho nhân viên thuộc phòng ban của mình")
			}
		}
		return allow()
	case RoleStaff:
		if p.staffSelfTasks {
			if !ctx.SelfAssignOnly {
				return deny("nhân viên chỉ được phép tạo công việc cho chính mình")
			}
			return allow()
		}
		return deny("nhân viên không được tạo công việc")
	case RoleDirector:
		return deny("Giám đốc không tạo công việc")
	case RoleAdmin:
		return deny("admin không tạo công việc")
	}
	return deny("vai trò '%s' không được tạo công việc", actor.RoleName)
}
