package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MathewAndreiAbao/eguidance-api/api/swagger"
	"github.com/MathewAndreiAbao/eguidance-api/internal/handler"
	"github.com/MathewAndreiAbao/eguidance-api/internal/middleware"
	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	"github.com/MathewAndreiAbao/eguidance-api/internal/repository"
	"github.com/MathewAndreiAbao/eguidance-api/internal/service"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/cache"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/config"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/database"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/logger"
	corsmiddleware "github.com/MathewAndreiAbao/eguidance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/MathewAndreiAbao/eguidance-api/pkg/middleware/requestid"
)

// @title eGuidance API
// @version 1.0.0
// @description Appointment scheduling backend for the student guidance platform
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	reportRepo := repository.NewReportRepository(db)
	otpRepo := repository.NewOTPRepository(redisClient)

	metricsService := service.NewMetricsService()
	activityService := service.NewActivityService(activityRepo)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, activityService, logr)
	availabilityService := service.NewAvailabilityService(appointmentRepo)
	userService := service.NewUserService(userRepo)
	reportService := service.NewReportService(reportRepo, activityService, logr)
	authService := service.NewAuthService(userRepo, otpRepo, &service.LoggingOTPSender{Logger: logr}, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		OTPTTL:      cfg.OTP.TTL,
		OTPLength:   cfg.OTP.Length,
	})

	authHandler := handler.NewAuthHandler(authService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService, availabilityService, metricsService)
	userHandler := handler.NewUserHandler(userService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsService))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/otp/request", authHandler.RequestOTP)
	auth.POST("/otp/verify", authHandler.VerifyOTP)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.GET("/users/me", userHandler.Me)
	protected.GET("/users/counselors", userHandler.ListCounselors)

	appointments := protected.Group("/appointments")
	appointments.POST("", appointmentHandler.Create)
	appointments.GET("", appointmentHandler.List)
	appointments.GET("/available", appointmentHandler.AvailableTimes)
	appointments.PUT("/:id/status", middleware.RequireRoles(models.RoleCounselor), appointmentHandler.UpdateStatus)
	appointments.PUT("/:id", middleware.RequireRoles(models.RoleCounselor), appointmentHandler.Reschedule)
	appointments.DELETE("/:id", appointmentHandler.Delete)

	if cfg.Reports.Enabled {
		reports := protected.Group("/reports")
		reports.Use(middleware.RequireRoles(models.RoleCounselor))
		reports.GET("/weekly", reportHandler.Weekly)
		reports.GET("/monthly", reportHandler.Monthly)
		reports.GET("/download", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
