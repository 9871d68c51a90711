package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/gym-attendance/internal/api"
	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/cache"
	"alcyxob/gym-attendance/internal/config"
	"alcyxob/gym-attendance/internal/jobs"
	"alcyxob/gym-attendance/internal/logger"
	"alcyxob/gym-attendance/internal/repository"
	"alcyxob/gym-attendance/internal/repository/memory"
	"alcyxob/gym-attendance/internal/repository/mongo"
	"alcyxob/gym-attendance/internal/service"
	"alcyxob/gym-attendance/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title Gym Attendance API
// @version 1.0
// @description Trainer check-in/check-out with lateness penalties and payroll reports.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := logger.New(&cfg.Log, "gym-attendance-api")
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Attendance.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}
	clock := attendance.NewClock(loc)
	log.Info("configuration loaded",
		zap.String("driver", cfg.Database.Driver),
		zap.String("timezone", loc.String()))

	// --- Repositories ---
	var (
		userRepo         repository.UserRepository
		sessionRepo      repository.SessionRepository
		attendanceRepo   repository.AttendanceRepository
		reportRepo       repository.PayrollReportRepository
		notificationRepo repository.NotificationRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMongo:
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatal("could not connect to MongoDB", zap.Error(err))
		}
		defer func() {
			log.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)

		// Check-in uniqueness depends on the open-record index, so it is
		// created before serving instead of in the background.
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err = mongo.EnsureIndexes(ctx, appDB, log)
		cancel()
		if err != nil {
			log.Fatal("could not create attendance indexes", zap.Error(err))
		}

		userRepo = mongo.NewMongoUserRepository(appDB)
		sessionRepo = mongo.NewMongoSessionRepository(appDB)
		attendanceRepo = mongo.NewMongoAttendanceRepository(appDB)
		reportRepo = mongo.NewMongoPayrollReportRepository(appDB)
		notificationRepo = mongo.NewMongoNotificationRepository(appDB)
	case config.DriverMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		userRepo = memory.NewUserRepository()
		sessionRepo = memory.NewSessionRepository()
		attendanceRepo = memory.NewAttendanceRepository()
		reportRepo = memory.NewPayrollReportRepository()
		notificationRepo = memory.NewNotificationRepository()
	}

	// --- Redis: session cache and late-notice queue ---
	var (
		sessionLookup repository.SessionLookup = sessionRepo
		notifier      service.LateNotifier     = jobs.NoopNotifier{Log: log}
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		sessionLookup = cache.NewSessionCache(sessionRepo, rdb, cfg.Redis.SessionTTL, log)

		// The worker writes notices to MongoDB, which an in-memory server cannot share.
		if cfg.Database.Driver == config.DriverMongo {
			queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
			defer func() { _ = queue.Close() }()
			notifier = jobs.NewEnqueuer(queue, log)
		}
		log.Info("redis enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, log)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		log.Warn("s3.bucket_name not set; payroll export disabled")
	}

	// --- Services ---
	services := api.Services{
		Auth:          service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.Auth.AllowAdminSignup, log),
		Attendance:    service.NewAttendanceService(attendanceRepo, sessionLookup, userRepo, notifier, clock, log),
		Schedule:      service.NewScheduleService(userRepo, sessionRepo, clock, log),
		Payroll:       service.NewPayrollService(attendanceRepo, reportRepo, fileStorage, clock, cfg.Reports.URLExpiry, log),
		Notifications: service.NewNotificationService(notificationRepo),
	}

	// --- Gin ---
	if err := api.RegisterValidators(); err != nil {
		log.Fatal("failed to register validators", zap.Error(err))
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log))
	api.SetupRoutes(router, cfg.JWT.Secret, clock, time.Now, services, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	if err := runServer(server, quit, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
	}
	log.Info("server exiting")
}

// runServer serves until a signal arrives on quit or the listener fails, then
// shuts the server down gracefully. Listener errors are returned instead of
// exiting so the caller's deferred cleanup still runs.
func runServer(server *http.Server, quit <-chan os.Signal, log *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var err error
	select {
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	case err = <-serveErr:
		log.Error("ListenAndServe error", zap.Error(err))
	}

	// The context gives in-flight requests 5 seconds to finish
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if shutdownErr := server.Shutdown(ctxShutdown); shutdownErr != nil {
		log.Error("server forced to shutdown", zap.Error(shutdownErr))
	}
	return err
}
