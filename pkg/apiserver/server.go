package apiserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/apiserver/handlers"
	"github.com/taskdesk/taskdesk/pkg/apiserver/middleware"
	"github.com/taskdesk/taskdesk/pkg/audit"
	"github.com/taskdesk/taskdesk/pkg/auth"
	"github.com/taskdesk/taskdesk/pkg/cache"
	"github.com/taskdesk/taskdesk/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/eventbus"
	"github.com/taskdesk/taskdesk/pkg/events"
	"github.com/taskdesk/taskdesk/pkg/notify"
	"github.com/taskdesk/taskdesk/pkg/policy"
	"github.com/taskdesk/taskdesk/pkg/service"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
	redisclient "github.com/taskdesk/taskdesk/pkg/store/redis"
)

type Server struct {
	router *gin.Engine
	db     *postgres.Store
	cache  cache.Cache
	cfg    *config.Config
	logger *zap.Logger
}

// NewServer wires the full request path: repositories, the policy and
// workflow services, the post-commit event dispatcher and the HTTP routes.
// redis may be nil; the event bus is then skipped.
func NewServer(db *postgres.Store, redis *redisclient.Client, cfg *config.Config, logger *zap.Logger, mailer service.Mailer) *Server {
	accountRepo := postgres.NewAccountRepository(db.DB())
	projectRepo := postgres.NewProjectRepository(db.DB())
	taskRepo := postgres.NewTaskRepository(db.DB())
	notificationRepo := postgres.NewNotificationRepository(db.DB())
	systemLogRepo := postgres.NewSystemLogRepository(db.DB())
	outboxRepo := postgres.NewOutboxRepository(db.DB())

	router := notify.NewRouter(accountRepo, notificationRepo, logger)
	auditor := audit.NewLogger(systemLogRepo, logger)

	var publisher events.Publisher
	if redis != nil {
		publisher = events.NewBusPublisher(eventbus.NewBus(redis.Client()))
	}
	dispatcher := events.NewDispatcher(router, auditor, publisher, outboxRepo, logger)

	pol := policy.New(cfg.Policy)
	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	var refCache cache.Cache = cache.Disabled{}
	if cfg.Cache.Enabled {
		refCache = cache.NewMemory(cfg.Cache.SweepInterval)
	}

	authService := service.NewAuthService(accountRepo, tokens, dispatcher, mailer, cfg.Auth, logger)
	accountService := service.NewAccountService(accountRepo, db.DB(), dispatcher, logger)
	projectService := service.NewProjectService(projectRepo, pol, dispatcher, logger)
	taskService := service.NewTaskService(taskRepo, projectRepo, accountRepo, db.DB(), pol, dispatcher, logger)
	taskItemService := service.NewTaskItemService(taskRepo, accountRepo, db.DB(), dispatcher, logger)
	taskReportService := service.NewTaskReportService(taskRepo, db.DB(), logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)
	systemLogService := service.NewSystemLogService(systemLogRepo, logger)
	dashboardService := service.NewDashboardService(db.DB(), logger)
	escalationService := service.NewEscalationService(taskRepo, pol, dispatcher, logger)
	referenceService := service.NewReferenceService(db.DB(), refCache, cfg.Cache.DefaultTTL, logger)

	s := &Server{
		db:     db,
		cache:  refCache,
		cfg:    cfg,
		logger: logger,
	}
	s.setupRouter(
		tokens,
		handlers.NewAuthHandler(authService, logger),
		handlers.NewAccountHandler(accountService, logger),
		handlers.NewProjectHandler(projectService, logger),
		handlers.NewTaskHandler(taskService, taskItemService, taskReportService, logger),
		handlers.NewNotificationHandler(notificationService, logger),
		handlers.NewSystemLogHandler(systemLogService, logger),
		handlers.NewMiscHandler(dashboardService, escalationService, referenceService, logger),
	)
	return s
}

func (s *Server) setupRouter(
	tokens *auth.TokenManager,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	projectHandler *handlers.ProjectHandler,
	taskHandler *handlers.TaskHandler,
	notificationHandler *handlers.NotificationHandler,
	systemLogHandler *handlers.SystemLogHandler,
	miscHandler *handlers.MiscHandler,
) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	api := r.Group("/api/v1")

	// public auth endpoints
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	secured := api.Group("")
	secured.Use(middleware.Auth(tokens))
	{
		secured.GET("/auth/me", authHandler.Me)
		secured.POST("/auth/change-password", authHandler.ChangePassword)

		secured.POST("/accounts", accountHandler.Create)
		secured.GET("/accounts", accountHandler.List)
		secured.GET("/accounts/:id", accountHandler.Get)
		secured.PUT("/accounts/:id", accountHandler.Update)
		secured.DELETE("/accounts/:id", accountHandler.Delete)
		secured.POST("/accounts/:id/restore", accountHandler.Restore)

		secured.POST("/projects", projectHandler.Create)
		secured.GET("/projects", projectHandler.List)
		secured.GET("/projects/:id", projectHandler.Get)
		secured.PUT("/projects/:id", projectHandler.Update)
		secured.DELETE("/projects/:id", projectHandler.Delete)

		secured.POST("/tasks", taskHandler.Create)
		secured.GET("/tasks", taskHandler.List)
		secured.GET("/tasks/:id", taskHandler.Get)
		secured.PUT("/tasks/:id", taskHandler.Update)
		secured.DELETE("/tasks/:id", taskHandler.Delete)

		secured.POST("/tasks/:id/checklist", taskHandler.AddChecklistItem)
		secured.PUT("/tasks/:id/checklist/:itemId", taskHandler.UpdateChecklistItem)
		secured.DELETE("/tasks/:id/checklist/:itemId", taskHandler.DeleteChecklistItem)

		secured.POST("/tasks/:id/labels", taskHandler.AttachLabel)
		secured.DELETE("/tasks/:id/labels/:labelId", taskHandler.DetachLabel)

		secured.POST("/tasks/:id/attachments", taskHandler.AddAttachment)
		secured.DELETE("/tasks/:id/attachments/:attachmentId", taskHandler.DeleteAttachment)

		secured.POST("/tasks/:id/comments", taskHandler.AddComment)
		secured.PUT("/tasks/:id/comments/:commentId", taskHandler.UpdateComment)
		secured.DELETE("/tasks/:id/comments/:commentId", taskHandler.DeleteComment)

		secured.POST("/tasks/:id/reports", taskHandler.CreateReport)
		secured.GET("/tasks/:id/reports", taskHandler.ListReports)
		secured.PUT("/tasks/:id/reports/:reportId", taskHandler.UpdateReport)
		secured.DELETE("/tasks/:id/reports/:reportId", taskHandler.DeleteReport)

		secured.GET("/notifications", notificationHandler.List)
		secured.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		secured.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		secured.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		secured.DELETE("/notifications/:id", notificationHandler.Delete)

		secured.GET("/system-logs", systemLogHandler.List)
		secured.GET("/system-logs/actions", systemLogHandler.Actions)

		secured.GET("/dashboard/stats", miscHandler.DashboardStats)

		secured.POST("/escalations/leader", miscHandler.EscalateToLeader)
		secured.POST("/escalations/pmo", miscHandler.EscalateToPMO)

		secured.GET("/departments", miscHandler.Departments)
		secured.POST("/departments", miscHandler.CreateDepartment)
		secured.GET("/roles", miscHandler.Roles)
		secured.GET("/labels", miscHandler.Labels)
		secured.GET("/me/department", miscHandler.MyDepartment)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close releases server-owned resources (currently the reference cache).
func (s *Server) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
