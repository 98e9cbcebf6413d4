package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/colegio-app/colegio-api/api/swagger"
	"github.com/colegio-app/colegio-api/internal/handler"
	"github.com/colegio-app/colegio-api/internal/middleware"
	"github.com/colegio-app/colegio-api/internal/repository"
	"github.com/colegio-app/colegio-api/internal/service"
	"github.com/colegio-app/colegio-api/pkg/cache"
	"github.com/colegio-app/colegio-api/pkg/config"
	"github.com/colegio-app/colegio-api/pkg/database"
	"github.com/colegio-app/colegio-api/pkg/logger"
	corsmiddleware "github.com/colegio-app/colegio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/colegio-app/colegio-api/pkg/middleware/requestid"
	"github.com/colegio-app/colegio-api/pkg/storage"
)

// @title Colegio API
// @version 1.0.0
// @description School administration backend
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, unread counts fall through to storage", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.BaseDir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		logr.Fatal("init upload storage", zap.Error(err))
	}

	pager := repository.NewPaginator(db)
	studentRepo := repository.NewStudentRepository(db, pager)
	courseRepo := repository.NewCourseRepository(db, pager)
	curriculumRepo := repository.NewCurriculumRepository(db, pager)
	reportRepo := repository.NewGradeReportRepository(db, pager)
	leaveRepo := repository.NewLeaveRequestRepository(db, pager)
	paymentRepo := repository.NewPaymentRepository(db, pager)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	eventRepo := repository.NewEventRepository(db, pager)
	meetingRepo := repository.NewMeetingRepository(db, pager)

	metricsSvc := service.NewMetricsService()
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, redisClient, cfg.Notifications.UnreadCountTTL, metricsSvc, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, nil, logr)
	courseSvc := service.NewCourseService(courseRepo, curriculumRepo, studentRepo, nil, logr)
	curriculumSvc := service.NewCurriculumService(curriculumRepo, nil, logr)
	reportSvc := service.NewGradeReportService(reportRepo, studentRepo, courseRepo, uploads, notificationSvc, userRepo, cfg.Uploads, nil, logr)
	leaveSvc := service.NewLeaveRequestService(leaveRepo, studentRepo, uploads, notificationSvc, cfg.Uploads, nil, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, userRepo, studentRepo, uploads, notificationSvc, cfg.Uploads, nil, logr)
	userSvc := service.NewUserService(userRepo, studentRepo, nil, logr)
	eventSvc := service.NewEventService(eventRepo, notificationSvc, nil, logr)
	meetingSvc := service.NewMeetingService(meetingRepo, notificationSvc, nil, logr)
	exportSvc := service.NewExportService(courseRepo, studentRepo, logr)

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userSvc.EnsureBootstrapAdmin(bootstrapCtx, cfg.Bootstrap); err != nil {
		logr.Warn("bootstrap admin", zap.Error(err))
	}
	cancel()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.Static(cfg.Uploads.PublicBaseURL, uploads.BaseDir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Courses:       handler.NewCourseHandler(courseSvc, exportSvc),
		Curricula:     handler.NewCurriculumHandler(curriculumSvc),
		GradeReports:  handler.NewGradeReportHandler(reportSvc),
		Leaves:        handler.NewLeaveRequestHandler(leaveSvc),
		Payments:      handler.NewPaymentHandler(paymentSvc),
		Users:         handler.NewUserHandler(userSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Events:        handler.NewEventHandler(eventSvc),
		Meetings:      handler.NewMeetingHandler(meetingSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
