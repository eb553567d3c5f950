package main

import (
	"errors"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/model"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

// Bootstraps the five roles, an IT department and the initial admin
// account. Safe to run repeatedly: existing rows are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	store, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.AutoMigrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	db := store.DB()

	roles := map[string]string{
		"Admin":    "Quản trị hệ thống",
		"Director": "Giám đốc",
		"PMO":      "Phòng quản lý dự án",
		"Leader":   "Trưởng phòng",
		"Staff":    "Nhân viên",
	}
	roleIDs := map[string]*model.Role{}
	for name, description := range roles {
		var role model.Role
		err := db.Where("name = ?", name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = model.Role{Name: name, Description: description}
			if err := db.Create(&role).Error; err != nil {
				logger.Fatal("failed to create role", zap.String("role", name), zap.Error(err))
			}
			logger.Info("created role", zap.String("role", name))
		} else if err != nil {
			logger.Fatal("failed to query role", zap.String("role", name), zap.Error(err))
		}
		r := role
		roleIDs[name] = &r
	}

	var department model.Department
	err = db.Where("name = ?", "IT").First(&department).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		department = model.Department{Name: "IT"}
		if err := db.Create(&department).Error; err != nil {
			logger.Fatal("failed to create department", zap.Error(err))
		}
		logger.Info("created department", zap.String("name", "IT"))
	} else if err != nil {
		logger.Fatal("failed to query department", zap.Error(err))
	}

	var admin model.Account
	err = db.Where("username = ?", "admin").First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		password := os.Getenv("TASKDESK_SEED_ADMIN_PASSWORD")
		if password == "" {
			password = "admin123"
			logger.Warn("using default admin password, change it immediately")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("failed to hash password", zap.Error(err))
		}
		admin = model.Account{
			Username: "admin",
			Password: string(hash),
			RoleID:   roleIDs["Admin"].ID,
			Status:   model.AccountActive,
		}
		if err := db.Create(&admin).Error; err != nil {
			logger.Fatal("failed to create admin account", zap.Error(err))
		}
		logger.Info("created admin account")
	} else if err != nil {
		logger.Fatal("failed to query admin account", zap.Error(err))
	}

	logger.Info("seed complete")
}
