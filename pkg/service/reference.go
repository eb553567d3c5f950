package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/cache"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/policy"
)

const (
	cacheKeyDepartments = "ref:departments"
	cacheKeyRoles       = "ref:roles"
	cacheKeyLabels      = "ref:labels"
)

// ReferenceService serves the read-mostly lookup tables (departments,
// roles, labels) behind the TTL cache. Writes invalidate by prefix.
type ReferenceService struct {
	db     *gorm.DB
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewReferenceService(db *gorm.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *ReferenceService {
	if c == nil {
		c = cache.Disabled{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReferenceService{db: db, cache: c, ttl: ttl, logger: logger}
}

func (s *ReferenceService) Departments(ctx context.Context) Result {
	if v, ok := s.cache.Get(cacheKeyDepartments); ok {
		return OK(v)
	}

	var departments []model.Department
	err := s.db.WithContext(ctx).
		Preload("Children").
		Where("parent_id IS NULL").
		Order("name").
		Find(&departments).Error
	if err != nil {
		s.logger.Error("department list failed", zap.Error(err))
		return Internal()
	}

	s.cache.Set(cacheKeyDepartments, departments, s.ttl)
	return OK(departments)
}

func (s *ReferenceService) Roles(ctx context.Context) Result {
	if v, ok := s.cache.Get(cacheKeyRoles); ok {
		return OK(v)
	}

	var roles []model.Role
	if err := s.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		s.logger.Error("role list failed", zap.Error(err))
		return Internal()
	}

	s.cache.Set(cacheKeyRoles, roles, s.ttl)
	return OK(roles)
}

func (s *ReferenceService) Labels(ctx context.Context) Result {
	if v, ok := s.cache.Get(cacheKeyLabels); ok {
		return OK(v)
	}

	var labels []model.Label
	if err := s.db.WithContext(ctx).Order("name").Find(&labels).Error; err != nil {
		s.logger.Error("label list failed", zap.Error(err))
		return Internal()
	}

	s.cache.Set(cacheKeyLabels, labels, s.ttl)
	return OK(labels)
}

type CreateDepartmentInput struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parentId"`
}

func (s *ReferenceService) CreateDepartment(ctx context.Context, actor policy.Actor, in CreateDepartmentInput) Result {
	if actor.Role != policy.RoleAdmin {
		return Forbidden("chỉ admin mới được tạo phòng ban")
	}
	if in.Name == "" {
		return BadRequest("thiếu tên phòng ban")
	}

	department := &model.Department{Name: in.Name, ParentID: in.ParentID}
	if err := s.db.WithContext(ctx).Create(department).Error; err != nil {
		s.logger.Error("department create failed", zap.Error(err))
		return Internal()
	}

	s.cache.Invalidate("ref:*")
	return Created(department)
}

// MyDepartment returns the caller's department, resolved from identity.
func (s *ReferenceService) MyDepartment(ctx context.Context, actor policy.Actor) Result {
	if actor.DepartmentID == nil {
		return NotFound("tài khoản của bạn chưa thuộc phòng ban nào")
	}

	var department model.Department
	err := s.db.WithContext(ctx).
		Preload("Members", "is_deleted = ?", false).
		First(&department, "id = ?", *actor.DepartmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("phòng ban không tồn tại")
		}
		s.logger.Error("department get failed", zap.Error(err))
		return Internal()
	}
	return OK(&department)
}
