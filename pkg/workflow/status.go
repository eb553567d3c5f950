package workflow

import "strings"

// Task status vocabulary. Stored values are free-form strings; the engine
// canonicalizes the known set before comparing so that legacy spellings
// ("waiting-approval") keep working.
const (
	StatusPending         = "pending"
	StatusInProgress      = "in_progress"
	StatusReviewRequest   = "review_request"
	StatusWaitingApproval = "waiting_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusReturned        = "returned"
	StatusCompleted       = "completed"
	StatusDone            = "done"
	StatusDeleted         = "deleted"
)

var canonical = map[string]string{
	"pending":          StatusPending,
	"in_progress":      StatusInProgress,
	"in-progress":      StatusInProgress,
	"review_request":   StatusReviewRequest,
	"review-request":   StatusReviewRequest,
	"waiting_approval": StatusWaitingApproval,
	"waiting-approval": StatusWaitingApproval,
	"approved":         StatusApproved,
	"rejected":         StatusRejected,
	"returned":         StatusReturned,
	"completed":        StatusCompleted,
	"done":             StatusDone,
	"deleted":          StatusDeleted,
}

// Vietnamese labels used in audit messages and notifications.
var labels = map[string]string{
	StatusPending:         "Chờ xử lý",
	StatusInProgress:      "Đang thực hiện",
	StatusReviewRequest:   "Chờ duyệt",
	StatusWaitingApproval: "Chờ phê duyệt",
	StatusApproved:        "Đã duyệt",
	StatusRejected:        "Bị từ chối",
	StatusReturned:        "Trả lại",
	StatusCompleted:       "Hoàn thành",
	StatusDone:            "Hoàn thành",
	StatusDeleted:         "Đã xóa",
}

// Canonical maps a raw status to its canonical spelling. Unknown values are
// returned lower-cased and trimmed so they can still round-trip through the
// generic status_changed path.
func Canonical(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if c, ok := canonical[s]; ok {
		return c
	}
	return s
}

// Known reports whether the status belongs to the canonical vocabulary.
func Known(status string) bool {
	_, ok := canonical[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Label returns the human-readable Vietnamese label for a status, falling
// back to the raw value.
func Label(status string) string {
	if l, ok := labels[Canonical(status)]; ok {
		return l
	}
	return status
}

// IsTerminalDone reports whether the status completes a task and should
// stamp the completion timestamp.
func IsTerminalDone(status string) bool {
	c := Canonical(status)
	return c == StatusCompleted || c == StatusDone
}

// IsReviewRequest reports whether the status asks the department Leader for
// a review.
func IsReviewRequest(status string) bool {
	c := Canonical(status)
	return c == StatusReviewRequest || c == StatusWaitingApproval
}
