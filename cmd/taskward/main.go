package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskward/taskward/internal/app"
	"github.com/taskward/taskward/internal/audit"
	"github.com/taskward/taskward/internal/auth"
	"github.com/taskward/taskward/internal/observability"
	"github.com/taskward/taskward/internal/permissions"
	"github.com/taskward/taskward/internal/platform/cache"
	"github.com/taskward/taskward/internal/platform/db"
	"github.com/taskward/taskward/internal/rbac"
	"github.com/taskward/taskward/internal/roles"
	"github.com/taskward/taskward/internal/tasks"
	"github.com/taskward/taskward/internal/users"
	"github.com/taskward/taskward/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	rbacService := rbac.NewService(rbac.NewRepository(dbpool))
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger, Metrics: metrics}

	denylist := auth.NewDenylist(redisClient)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, rbacService, denylist, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(logger, authService)
	authenticator := auth.Authenticator{
		Repo:     authRepo,
		Denylist: denylist,
		Secret:   cfg.JWTSecret,
		Logger:   logger,
	}

	auditRepo := audit.NewRepository(dbpool)
	var recorder audit.Recorder
	var jobsHandler *jobs.Handler
	if cfg.AuditQueueDisabled {
		recorder = audit.NewDirectRecorder(auditRepo, logger)
	} else {
		jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		recorder = audit.NewQueueRecorder(jobsClient, logger)
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		jobsHandler = jobs.NewHandler(inspector, logger, rbacMiddleware)
	}
	auditTrail := &audit.Middleware{Recorder: recorder}
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService, rbacMiddleware)

	permissionService := permissions.NewService(permissions.NewRepository(dbpool))
	permissionHandler := permissions.NewHandler(logger, permissionService, rbacMiddleware)

	roleService := roles.NewService(roles.NewRepository(dbpool))
	roleHandler := roles.NewHandler(logger, roleService, rbacMiddleware)

	userService := users.NewService(users.NewRepository(dbpool))
	userHandler := users.NewHandler(logger, userService, rbacMiddleware)

	taskService := tasks.NewService(tasks.NewRepository(dbpool), rbacService)
	taskHandler := tasks.NewHandler(logger, taskService, rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Middleware: app.MiddlewareConfig{
			Logger:  logger,
			Config:  cfg,
			Metrics: metrics,
		},
		Metrics:           metrics,
		Authenticator:     authenticator,
		AuditTrail:        auditTrail,
		AuthHandler:       authHandler,
		TaskHandler:       taskHandler,
		PermissionHandler: permissionHandler,
		RoleHandler:       roleHandler,
		UserHandler:       userHandler,
		AuditHandler:      auditHandler,
		JobsHandler:       jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
