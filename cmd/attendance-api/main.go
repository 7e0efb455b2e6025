package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/rvnp-attendance-api/api/swagger"
	"github.com/noah-isme/rvnp-attendance-api/internal/handler"
	internalmiddleware "github.com/noah-isme/rvnp-attendance-api/internal/middleware"
	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/repository"
	"github.com/noah-isme/rvnp-attendance-api/internal/service"
	"github.com/noah-isme/rvnp-attendance-api/pkg/cache"
	"github.com/noah-isme/rvnp-attendance-api/pkg/config"
	"github.com/noah-isme/rvnp-attendance-api/pkg/database"
	"github.com/noah-isme/rvnp-attendance-api/pkg/export"
	"github.com/noah-isme/rvnp-attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/rvnp-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/rvnp-attendance-api/pkg/middleware/requestid"
)

// @title RVNP Trainer Lesson Attendance API
// @version 1.0.0
// @description Lesson attendance reporting and analytics for departmental trainers
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("migrate schema", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	entityRepo := repository.NewEntityRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)
	accessSvc := service.NewAccessService(assignmentRepo, departmentRepo, logr)
	authSvc := service.NewAuthService(userRepo, sessionRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	})
	userSvc := service.NewUserService(userRepo, sessionRepo, accessSvc, validate, logr)
	entitySvc := service.NewEntityService(entityRepo, accessSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, entityRepo, accessSvc, validate, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, accessSvc, cacheSvc, metricsSvc, logr)
	reportSvc := service.NewReportService(lessonRepo, entityRepo, accessSvc, analyticsSvc, metricsSvc, validate, logr)
	importSvc := service.NewImportService(entitySvc, accessSvc, metricsSvc, logr)
	exportSvc := service.NewExportService(analyticsSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	created, err := userSvc.EnsureSuperAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
	if err != nil {
		logr.Fatal("seed super admin", zap.Error(err))
	}
	if created {
		logr.Warn("seeded default super admin, change its password", zap.String("username", cfg.Seed.AdminUsername))
	}

	authHandler := handler.NewAuthHandler(authSvc, accessSvc)
	departmentHandler := handler.NewDepartmentHandler(accessSvc)
	userHandler := handler.NewUserHandler(userSvc)
	entityHandler := handler.NewEntityHandler(entitySvc, importSvc, cfg.Import.MaxFileSizeBytes)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis":    cacheRepo.Ping,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	admins := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleHOD)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/departments", departmentHandler.List)

	users := secured.Group("/users", admins)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.DELETE("/:id", userHandler.Delete)

	entities := secured.Group("/entities/:kind")
	entities.GET("", entityHandler.List)
	entities.POST("", admins, entityHandler.Create)
	entities.DELETE("/:id", admins, entityHandler.Delete)
	entities.POST("/import", admins, entityHandler.Import)

	assignments := secured.Group("/assignments", admins)
	assignments.GET("", assignmentHandler.List)
	assignments.POST("", assignmentHandler.Assign)
	assignments.GET("/reps", assignmentHandler.Reps)
	assignments.DELETE("/:id", assignmentHandler.Delete)

	reports := secured.Group("/reports")
	reports.GET("", reportHandler.List)
	reports.POST("", reportHandler.Submit)
	reports.GET("/options", reportHandler.Options)
	reports.POST("/delete", admins, reportHandler.Delete)

	analytics := secured.Group("/analytics")
	analytics.GET("/attendance", analyticsHandler.Attendance)
	analytics.GET("/attendance/export", analyticsHandler.Export)

	secured.GET("/system/metrics", internalmiddleware.RequireRoles(models.RoleSuperAdmin), metricsHandler.System)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
