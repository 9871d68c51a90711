package main

import (
	"context"

	"alcyxob/gym-attendance/internal/config"
	"alcyxob/gym-attendance/internal/jobs"
	"alcyxob/gym-attendance/internal/logger"
	"alcyxob/gym-attendance/internal/repository/mongo"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// The worker consumes late-notice tasks enqueued by the API server and stores
// them as trainer notifications in MongoDB.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := logger.New(&cfg.Log, "gym-attendance-worker")
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if cfg.Redis.Addr == "" {
		log.Fatal("redis.addr is required to run the worker")
	}
	if cfg.Database.Driver != config.DriverMongo {
		log.Fatal("the worker requires database.driver=mongo", zap.String("driver", cfg.Database.Driver))
	}

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	notificationRepo := mongo.NewMongoNotificationRepository(dbClient.Database(cfg.Database.Name))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Logger:      log.Sugar(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error("task failed", zap.String(logger.FieldTaskType, task.Type()), zap.Error(err))
			}),
		},
	)

	mux := jobs.NewServeMux(jobs.NewLateNoticeHandler(notificationRepo, log))

	log.Info("worker starting", zap.Int("concurrency", cfg.Worker.Concurrency))
	// Run blocks until SIGTERM or SIGINT and then drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		log.Error("worker stopped", zap.Error(err))
	}
}
