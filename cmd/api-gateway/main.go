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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/noah-isme/unischedule-api/api/swagger"
	"github.com/noah-isme/unischedule-api/internal/fixtures"
	"github.com/noah-isme/unischedule-api/internal/handler"
	"github.com/noah-isme/unischedule-api/internal/middleware"
	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/config"
	"github.com/noah-isme/unischedule-api/pkg/jobs"
	"github.com/noah-isme/unischedule-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/unischedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/unischedule-api/pkg/middleware/requestid"
	"github.com/noah-isme/unischedule-api/pkg/storage"
)

// @title UniSchedule API
// @version 1.0.0
// @description University timetable with odd/even weeks, notifications and consultations
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, readiness, err := openBlobStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open persistence backend", zap.String("backend", cfg.Persistence.Backend), zap.Error(err))
	}
	defer blobs.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	builtin, err := service.BuiltinUsers(bcrypt.DefaultCost)
	if err != nil {
		logr.Fatal("failed to hash built-in accounts", zap.Error(err))
	}

	users := repository.NewUserDirectory(builtin)
	prefStore := repository.NewPreferenceStore()
	scheduleStore := repository.NewScheduleStore(nil)
	notificationStore := repository.NewNotificationStore(nil)
	consultationStore := repository.NewConsultationStore(nil)
	examStore := repository.NewExamStore(nil)
	if cfg.Seed.Enabled {
		// Hydration below overwrites every store that already has a snapshot.
		gen := fixtures.New(cfg.Seed.Value, time.Now())
		scheduleStore = repository.NewScheduleStore(gen.Sessions())
		notificationStore = repository.NewNotificationStore(gen.Notifications())
		consultationStore = repository.NewConsultationStore(gen.Consultations())
		examStore = repository.NewExamStore(gen.Exams())
	}

	persistence := service.NewPersistenceService(blobs, cfg.Persistence.KeyPrefix, metricsSvc, logr)
	persistence.Register(models.StoreAuth, users)
	persistence.Register(models.StorePreferences, prefStore)
	persistence.Register(models.StoreSchedule, scheduleStore)
	persistence.Register(models.StoreNotifications, notificationStore)
	persistence.Register(models.StoreConsultations, consultationStore)
	persistence.Register(models.StoreExams, examStore)

	missing, err := persistence.Hydrate(ctx)
	if err != nil {
		logr.Fatal("failed to hydrate stores", zap.Error(err))
	}
	if cfg.Seed.Enabled {
		for _, name := range missing {
			if err := persistence.Flush(ctx, name); err != nil {
				logr.Warn("failed to persist seeded store", zap.String("store", string(name)), zap.Error(err))
			}
		}
	}

	flushQueue := jobs.NewQueue("store-flush", persistence.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Persistence.Workers,
		MaxRetries: cfg.Persistence.Retries,
		RetryDelay: cfg.Persistence.RetryDelay,
		Logger:     logr,
	})
	flushQueue.Start(context.Background())
	persistence.AttachQueue(flushQueue)

	validate := service.NewValidator()
	calendar := service.NewWeekCalendar(cfg.Academic.Epoch())
	faculties := service.NewFacultyService(nil)

	authSvc := service.NewAuthService(users, faculties, persistence, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	scheduleSvc := service.NewScheduleService(scheduleStore, prefStore, calendar, persistence, validate, logr)
	notificationSvc := service.NewNotificationService(notificationStore, service.ParseTargetingPolicy(cfg.Notifications.Targeting), persistence, metricsSvc, validate, logr)
	consultationSvc := service.NewConsultationService(consultationStore, persistence, metricsSvc, validate, logr)
	examSvc := service.NewExamService(examStore, persistence, validate, logr)
	preferenceSvc := service.NewPreferenceService(prefStore, faculties, calendar, persistence, logr)

	loc := calendar.Location()
	authHandler := handler.NewAuthHandler(authSvc)
	facultyHandler := handler.NewFacultyHandler(faculties)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, loc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	consultationHandler := handler.NewConsultationHandler(consultationSvc)
	examHandler := handler.NewExamHandler(examSvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc, loc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to open export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(scheduleSvc, files, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			FontPath:  cfg.Exports.PDFFontPath,
		}, validate, logr)
		exportHandler = handler.NewExportHandler(exportSvc, loc)
		go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, logr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/faculties", facultyHandler.List)
	api.GET("/faculties/:code", facultyHandler.Get)
	if exportHandler != nil {
		api.GET("/exports/:token", exportHandler.Download)
	} else {
		api.GET("/exports/:token", handler.FeatureDisabled("exports"))
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	secured.GET("/auth/me", authHandler.Me)
	secured.PUT("/auth/profile", authHandler.UpdateProfile)
	secured.POST("/auth/password", authHandler.ChangePassword)

	schedule := secured.Group("/schedule")
	schedule.GET("/week", scheduleHandler.Week)
	schedule.GET("/parity", scheduleHandler.Parity)
	schedule.GET("/selection", preferenceHandler.Selection)
	schedule.PUT("/selection", preferenceHandler.SetSelection)
	schedule.GET("/sessions", scheduleHandler.List)
	schedule.GET("/sessions/:id", scheduleHandler.Get)
	schedule.POST("/sessions", staff, scheduleHandler.Create)
	schedule.PUT("/sessions/:id", staff, scheduleHandler.Update)
	schedule.PATCH("/sessions/:id/move", staff, scheduleHandler.Move)
	schedule.DELETE("/sessions/:id", staff, scheduleHandler.Delete)
	if exportHandler != nil {
		schedule.POST("/export", exportHandler.Generate)
	} else {
		schedule.POST("/export", handler.FeatureDisabled("exports"))
	}

	notifications := secured.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.POST("", staff, notificationHandler.Create)
	notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
	notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
	notifications.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), notificationHandler.Delete)

	consultations := secured.Group("/consultations")
	consultations.GET("", consultationHandler.List)
	consultations.GET("/:id", consultationHandler.Get)
	consultations.POST("", staff, consultationHandler.Create)
	consultations.PUT("/:id", staff, consultationHandler.Update)
	consultations.DELETE("/:id", staff, consultationHandler.Delete)
	students := middleware.RequireRoles(models.RoleStudent)
	consultations.POST("/:id/registration", students, consultationHandler.Register)
	consultations.DELETE("/:id/registration", students, consultationHandler.Unregister)

	exams := secured.Group("/exams")
	exams.GET("", examHandler.List)
	exams.GET("/:id", examHandler.Get)
	exams.POST("", staff, examHandler.Create)
	exams.PUT("/:id", staff, examHandler.Update)
	exams.DELETE("/:id", staff, examHandler.Delete)

	prefs := secured.Group("/preferences")
	prefs.GET("/theme", preferenceHandler.Theme)
	prefs.PUT("/theme", preferenceHandler.SetTheme)
	prefs.POST("/theme/toggle", preferenceHandler.ToggleTheme)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Persistence.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	flushQueue.Stop()
	if err := persistence.FlushAll(shutdownCtx); err != nil {
		logr.Error("final flush failed", zap.Error(err))
	}
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := exports.Cleanup(); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}
