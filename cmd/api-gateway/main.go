package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-catalog-api/api/swagger"
	"github.com/noah-isme/course-catalog-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-catalog-api/internal/middleware"
	"github.com/noah-isme/course-catalog-api/internal/realtime"
	"github.com/noah-isme/course-catalog-api/internal/repository"
	"github.com/noah-isme/course-catalog-api/internal/service"
	"github.com/noah-isme/course-catalog-api/internal/session"
	"github.com/noah-isme/course-catalog-api/pkg/cache"
	"github.com/noah-isme/course-catalog-api/pkg/config"
	"github.com/noah-isme/course-catalog-api/pkg/database"
	"github.com/noah-isme/course-catalog-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-catalog-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-catalog-api/pkg/middleware/requestid"
)

// @title Course Catalog API
// @version 0.1.0
// @description Course listing, dashboard and course detail screens backed by the catalog database
// @BasePath /api/v1
// @schemes http

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
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cacheEnabled := cfg.Catalog.CacheEnabled
	var cacheRepo *repository.CacheRepository
	if cacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, course cache disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			cacheRepo = repository.NewCacheRepository(client, "catalog")
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	metrics := service.NewMetricsService()

	hub := realtime.NewHub(realtime.HubConfig{
		Workers:    cfg.Realtime.DispatchWorkers,
		BufferSize: cfg.Realtime.DispatchBuffer,
		Logger:     logr,
		Metrics:    metrics,
	})
	hub.Start(ctx)
	defer hub.Stop()

	listener := database.NewListener(cfg.Database, cfg.Realtime, logr)
	source := realtime.NewPostgresSource(listener, cfg.Realtime.Channel, cfg.Realtime.PingInterval, hub, logr)
	go func() {
		if err := source.Run(ctx); err != nil && ctx.Err() == nil {
			logr.Error("change feed stopped", zap.Error(err))
		}
	}()

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	sess := session.New(studentRepo, logr)
	if err := sess.Init(ctx); err != nil {
		logr.Warn("session started without an active student", zap.Error(err))
	}

	var cacheStore service.CacheRepository
	if cacheRepo != nil {
		cacheStore = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Catalog.CacheTTL, logr, cacheEnabled)
	courseReader := service.NewCachedCourseReader(courseRepo, cacheSvc, cfg.Catalog.CacheTTL, logr)
	if cacheSvc.Enabled() {
		sub := service.WatchCourseChanges(ctx, hub, cacheSvc, logr)
		defer sub.Release()
	}

	screens := service.NewScreenFactory(service.ScreenDependencies{
		Students:      studentRepo,
		Courses:       courseRepo,
		CourseRecords: courseReader,
		Enrollments:   enrollmentRepo,
		Likes:         likeRepo,
		Identity:      sess,
		Feed:          hub,
		Metrics:       metrics,
		Logger:        logr,

		CourseFetchLimit: cfg.Catalog.CourseFetchLimit,
	})

	sessionHandler := handler.NewSessionHandler(service.NewSessionService(sess, validator.New(), logr))
	courseHandler := handler.NewCourseHandler(
		func() handler.CourseListingScreen { return screens.CourseListing() },
		func() handler.CourseDetailScreen { return screens.CourseDetail() },
	)
	liveHandler := handler.NewLiveHandler(
		func() handler.LiveListingScreen { return screens.CourseListing() },
		cfg.Websocket,
		corsmiddleware.NewOriginSet(cfg.CORS.AllowedOrigins),
		metrics,
		logr,
	)
	dashboardHandler := handler.NewDashboardHandler(func() handler.DashboardScreen { return screens.Dashboard() })
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	{
		api.GET("/session", sessionHandler.Get)
		api.PUT("/session/current", sessionHandler.Switch)

		api.GET("/courses", courseHandler.List)
		api.GET("/courses/live", liveHandler.Stream)
		api.GET("/courses/:id", courseHandler.Detail)
		api.POST("/courses/:id/like", courseHandler.ToggleLike)

		api.GET("/dashboard/:studentId", dashboardHandler.Get)
		api.POST("/dashboard/:studentId/enrollments/:enrollmentId/complete", dashboardHandler.Complete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// live screens end with the process context since Shutdown does not close hijacked connections
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
