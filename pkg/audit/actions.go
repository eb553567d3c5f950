package audit

import "github.com/taskdesk/taskdesk/pkg/events"

// Audit action vocabulary. These are technical/system actions; business
// notifications live in pkg/notify.
const (
	ActionLogin            = "login"
	ActionLogout           = "logout"
	ActionLoginFailed      = "login_failed"
	ActionPasswordReset    = "password_reset"
	ActionPasswordChange   = "password_change"
	ActionUserCreate       = "user_create"
	ActionUserUpdate       = "user_update"
	ActionUserDelete       = "user_delete"
	ActionUserRestore      = "user_restore"
	ActionProjectCreate    = "create_project"
	ActionProjectUpdate    = "update_project"
	ActionProjectDelete    = "delete_project"
	ActionTaskCreate       = "task_create"
	ActionTaskUpdate       = "task_update"
	ActionTaskDelete       = "task_delete"
	ActionTaskStatusChange = "task_status_change"
	ActionTaskAssign       = "task_assign"
	ActionTaskComplete     = "task_complete"
	ActionTaskComment      = "task_comment"
	ActionTaskChecklist    = "task_checklist"
	ActionTaskLabel        = "task_label"
	ActionTaskAttachment   = "task_attachment"
	ActionConfigChange     = "config_change"
	ActionRoleChange       = "role_change"
)

// actionForEvent maps a domain event to its audit action. Events missing
// here produce no audit entry; status-family events collapse onto the
// dedicated task_status_change action so a status transition is logged once,
// distinct from a generic update.
var actionForEvent = map[events.Type]string{
	events.LoggedIn:        ActionLogin,
	events.LoginFailed:     ActionLoginFailed,
	events.PasswordChanged: ActionPasswordChange,
	events.PasswordReset:   ActionPasswordReset,
	events.UserCreated:     ActionUserCreate,
	events.UserUpdated:     ActionUserUpdate,
	events.UserDeleted:     ActionUserDelete,
	events.UserRestored:    ActionUserRestore,
	events.ProjectCreated:  ActionProjectCreate,
	events.ProjectUpdated:  ActionProjectUpdate,
	events.ProjectApproved: ActionProjectUpdate,
	events.ProjectRejected: ActionProjectUpdate,
	events.ProjectClosed:   ActionProjectUpdate,
	events.ProjectDeleted:  ActionProjectDelete,
	events.TaskCreated:     ActionTaskCreate,
	events.TaskUpdated:     ActionTaskUpdate,
	events.TaskDeleted:     ActionTaskDelete,
	events.TaskAssigned:    ActionTaskAssign,
	events.TaskCompleted:   ActionTaskComplete,
	events.ReviewRequested: ActionTaskStatusChange,
	events.ReviewCompleted: ActionTaskStatusChange,
	events.TaskRejected:    ActionTaskStatusChange,
	events.TaskReturned:    ActionTaskStatusChange,
	events.StatusChanged:   ActionTaskStatusChange,

	// Sub-resource mutations collapse per resource, same shape as the
	// status family.
	events.CommentAdded:     ActionTaskComment,
	events.CommentEdited:    ActionTaskComment,
	events.CommentDeleted:   ActionTaskComment,
	events.FileAttached:     ActionTaskAttachment,
	events.FileRemoved:      ActionTaskAttachment,
	events.ChecklistAdded:   ActionTaskChecklist,
	events.ChecklistUpdated: ActionTaskChecklist,
	events.ChecklistRemoved: ActionTaskChecklist,
	events.LabelAttached:    ActionTaskLabel,
	events.LabelDetached:    ActionTaskLabel,
}

// Vietnamese labels for the filter dropdown.
var actionLabels = map[string]string{
	ActionLogin:            "Đăng nhập",
	ActionLogout:           "Đăng xuất",
	ActionLoginFailed:      "Đăng nhập thất bại",
	ActionPasswordReset:    "Đặt lại mật khẩu",
	ActionPasswordChange:   "Đổi mật khẩu",
	ActionUserCreate:       "Tạo người dùng",
	ActionUserUpdate:       "Cập nhật người dùng",
	ActionUserDelete:       "Xóa người dùng",
	ActionUserRestore:      "Khôi phục người dùng",
	ActionProjectCreate:    "Tạo dự án",
	ActionProjectUpdate:    "Cập nhật dự án",
	ActionProjectDelete:    "Xóa dự án",
	ActionTaskCreate:       "Tạo công việc",
	ActionTaskUpdate:       "Cập nhật công việc",
	ActionTaskDelete:       "Xóa công việc",
	ActionTaskStatusChange: "Thay đổi trạng thái công việc",
	ActionTaskAssign:       "Giao công việc",
	ActionTaskComplete:     "Hoàn thành công việc",
	ActionTaskComment:      "Bình luận công việc",
	ActionTaskChecklist:    "Mục kiểm tra công việc",
	ActionTaskLabel:        "Nhãn công việc",
	ActionTaskAttachment:   "Tệp đính kèm công việc",
	ActionConfigChange:     "Thay đổi cấu hình",
	ActionRoleChange:       "Thay đổi vai trò",
}

func ActionLabel(action string) string {
	if l, ok := actionLabels[action]; ok {
		return l
	}
	return action
}

// Actions returns the known action values with labels, for filter UIs.
func Actions() map[string]string {
	out := make(map[string]string, len(actionLabels))
	for k, v := range actionLabels {
		out[k] = v
	}
	return out
}
