package notify

import (
	"fmt"

	"github.com/taskdesk/taskdesk/pkg/events"
)

// Message builds the Vietnamese notification text for an event. Unknown
// event types fall back to the raw detail.
func Message(ev events.Event) string {
	switch ev.Type {
	case events.TaskAssigned:
		return fmt.Sprintf("Bạn được giao công việc mới: %q", ev.TaskTitle)
	case events.ReviewRequested:
		return fmt.Sprintf("%s yêu cầu duyệt công việc %q", ev.ActorName, ev.TaskTitle)
	case events.ReviewCompleted:
		return fmt.Sprintf("Công việc %q đã được duyệt", ev.TaskTitle)
	case events.TaskRejected:
		if ev.Detail != "" {
			return fmt.Sprintf("Công việc %q bị từ chối: %s", ev.TaskTitle, ev.Detail)
		}
		return fmt.Sprintf("Công việc %q bị từ chối: Cần sửa lại", ev.TaskTitle)
	case events.TaskReturned:
		return fmt.Sprintf("Công việc %q được trả lại để chỉnh sửa", ev.TaskTitle)
	case events.TaskCompleted:
		return fmt.Sprintf("%s đã hoàn thành công việc %q", ev.ActorName, ev.TaskTitle)
	case events.StatusChanged:
		return fmt.Sprintf("Trạng thái công việc %q đã đổi thành %s", ev.TaskTitle, ev.Detail)
	case events.DeadlineChanged:
		return fmt.Sprintf("Thời hạn công việc %q đã thay đổi", ev.TaskTitle)
	case events.EscalatedToLeader:
		msg := fmt.Sprintf("%s cần hỗ trợ với công việc %q", ev.ActorName, ev.TaskTitle)
		if ev.Detail != "" {
			msg += ": " + ev.Detail
		}
		return msg
	case events.EscalatedToPMO:
		return fmt.Sprintf("%s báo cáo sự cố: %s", ev.ActorName, ev.Detail)
	case events.ProjectCreated:
		return fmt.Sprintf("Dự án %q cần phê duyệt", ev.ProjectName)
	case events.ProjectApproved:
		return fmt.Sprintf("Dự án %q đã được Giám đốc phê duyệt", ev.ProjectName)
	case events.ProjectRejected:
		if ev.Detail != "" {
			return fmt.Sprintf("Dự án %q bị từ chối: %s", ev.ProjectName, ev.Detail)
		}
		return fmt.Sprintf("Dự án %q bị từ chối: Không đạt yêu cầu", ev.ProjectName)
	case events.ProjectClosed:
		return fmt.Sprintf("Dự án %q đã được đóng", ev.ProjectName)
	case events.CommentAdded:
		return fmt.Sprintf("%s đã bình luận trong công việc %q", ev.ActorName, ev.TaskTitle)
	case events.FileAttached:
		return fmt.Sprintf("%s đã đính kèm tệp vào công việc %q", ev.ActorName, ev.TaskTitle)
	case events.UserCreated:
		return fmt.Sprintf("Người dùng mới được tạo: %s", ev.Detail)
	}
	return ev.Detail
}
