package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

// DashboardService aggregates read-only counters. No workflow logic lives
// here.
type DashboardService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDashboardService(db *gorm.DB, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, logger: logger}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type memberLoad struct {
	MemberID string `json:"memberId"`
	FullName string `json:"fullName"`
	Open     int64  `json:"open"`
}

func (s *DashboardService) Stats(ctx context.Context, actor policy.Actor) Result {
	db := s.db.WithContext(ctx)
	stats := map[string]interface{}{}

	counts := []struct {
		key   string
		query *gorm.DB
	}{
		{"users", db.Model(&model.Account{}).Where("is_deleted = ?", false)},
		{"activeUsers", db.Model(&model.Account{}).Where("is_deleted = ? AND status = ?", false, model.AccountActive)},
		{"departments", db.Model(&model.Department{})},
		{"projects", db.Model(&model.Project{}).Where("is_deleted = ?", false)},
		{"tasks", db.Model(&model.Task{}).Where("is_deleted = ?", false)},
	}
	for _, c := range counts {
		var n int64
		if err := c.query.Count(&n).Error; err != nil {
			s.logger.Error("dashboard count failed", zap.String("counter", c.key), zap.Error(err))
			return Internal()
		}
		stats[c.key] = n
	}

	var projectsByStatus []statusCount
	err := db.Model(&model.Project{}).
		Select("status, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group("status").
		Scan(&projectsByStatus).Error
	if err != nil {
		s.logger.Error("project status aggregation failed", zap.Error(err))
		return Internal()
	}
	stats["projectsByStatus"] = projectsByStatus

	var tasksByStatus []statusCount
	err = db.Model(&model.Task{}).
		Select("status, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group("status").
		Scan(&tasksByStatus).Error
	if err != nil {
		s.logger.Error("task status aggregation failed", zap.Error(err))
		return Internal()
	}
	stats["tasksByStatus"] = tasksByStatus

	// Leaders additionally get the open-task load per member of their
	// department.
	if actor.Role == policy.RoleLeader && actor.DepartmentID != nil {
		var workload []memberLoad
		err = db.Model(&model.TaskMember{}).
			Select("members.id AS member_id, members.full_name, COUNT(*) AS open").
			Joins("JOIN members ON members.id = task_members.member_id").
			Joins("JOIN tasks ON tasks.id = task_members.task_id").
			Where("members.department_id = ?", *actor.DepartmentID).
			Where("tasks.is_deleted = ? AND tasks.status NOT IN ?", false, []string{"completed", "done", "deleted"}).
			Group("members.id, members.full_name").
			Scan(&workload).Error
		if err != nil {
			s.logger.Error("team workload aggregation failed", zap.Error(err))
			return Internal()
		}
		stats["teamWorkload"] = workload
	}

	return OK(stats)
}
