package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-ops/timetable-api/api/swagger"
	"github.com/campus-ops/timetable-api/internal/handler"
	metricsmiddleware "github.com/campus-ops/timetable-api/internal/middleware"
	"github.com/campus-ops/timetable-api/internal/models"
	"github.com/campus-ops/timetable-api/internal/repository"
	"github.com/campus-ops/timetable-api/internal/service"
	"github.com/campus-ops/timetable-api/pkg/cache"
	"github.com/campus-ops/timetable-api/pkg/config"
	"github.com/campus-ops/timetable-api/pkg/database"
	"github.com/campus-ops/timetable-api/pkg/logger"
	corsmiddleware "github.com/campus-ops/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-ops/timetable-api/pkg/middleware/requestid"
)

// @title Campus Timetable API
// @version 0.1.0
// @description Timetable scheduling and conflict-resolution engine
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	breakWindow, err := breakWindowFromConfig(cfg.Scheduler)
	if err != nil {
		logr.Sugar().Fatalw("invalid break window config", "error", err)
	}

	workHoursRepo := repository.NewWorkHoursRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRoomRepo := repository.NewSectionRoomRepository(db)
	assignmentRepo := repository.NewInstructorAssignmentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	generatorSvc := service.NewTimetableGeneratorService(
		workHoursRepo,
		courseRepo,
		sectionRoomRepo,
		assignmentRepo,
		timetableRepo,
		sessionRepo,
		db,
		cacheRepo,
		metricsSvc,
		nil,
		logr,
		service.GeneratorConfig{
			Break:                  breakWindow,
			InstructorDailyCeiling: cfg.Scheduler.InstructorDailyCeiling,
		},
	)
	manualSvc := service.NewManualTimetableService(
		timetableRepo,
		sessionRepo,
		db,
		cacheRepo,
		nil,
		logr,
		breakWindow,
	)
	timetableSvc := service.NewTimetableService(
		timetableRepo,
		sessionRepo,
		db,
		cacheRepo,
		logr,
		cfg.Timetable.CacheTTL,
	)
	loadSvc := service.NewInstructorLoadService(
		workHoursRepo,
		courseRepo,
		sectionRoomRepo,
		assignmentRepo,
		nil,
		logr,
		cfg.Scheduler.WorkingDays,
	)

	timetableHandler := handler.NewTimetableHandler(generatorSvc, manualSvc, timetableSvc)
	assignmentHandler := handler.NewInstructorAssignmentHandler(loadSvc)
	workHoursHandler := handler.NewWorkHoursHandler(workHoursRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(metricsmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/timetables/generate", timetableHandler.Generate)
		api.POST("/timetables/manual", timetableHandler.SubmitManual)
		api.GET("/timetables", timetableHandler.List)
		api.GET("/timetables/:id", timetableHandler.Get)
		api.PATCH("/timetables/:id/status", timetableHandler.SetStatus)
		api.DELETE("/timetables/:id", timetableHandler.Delete)
		api.GET("/timetables/:id/export", timetableHandler.Export)
		api.POST("/instructor-assignments", assignmentHandler.Create)
		api.GET("/departments/:id/work-hours", workHoursHandler.Get)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func breakWindowFromConfig(cfg config.SchedulerConfig) (models.BreakWindow, error) {
	start, err := models.ParseClock(cfg.BreakStart)
	if err != nil {
		return models.BreakWindow{}, fmt.Errorf("break start: %w", err)
	}
	end, err := models.ParseClock(cfg.BreakEnd)
	if err != nil {
		return models.BreakWindow{}, fmt.Errorf("break end: %w", err)
	}
	return models.BreakWindow{Start: start, End: end}, nil
}
