package cron

import (
	"context"
	"time"

	"casaora/config"
	"casaora/services/notification"
	"casaora/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const maxStartAttempts = 5

// RedisOpt is the queue connection shared by the worker and the API's client.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes every task type to its handler.
func NewMux(notifier notification.NotificationService, payouts tasks.PayoutRunner, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, tasks.HandleReminderTask(notifier, logger))
	mux.HandleFunc(tasks.TypePayoutBatch, tasks.HandlePayoutBatchTask(payouts, time.Now, logger))
	return mux
}

// InitWorker runs the task server and the periodic scheduler in the background.
func InitWorker(notifier notification.NotificationService, payouts tasks.PayoutRunner, logger *zap.Logger) {
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := NewMux(notifier, payouts, logger)

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register(tasks.PayoutSchedule, tasks.NewPayoutBatchTask()); err != nil {
		logger.Fatal("Failed to register payout schedule", zap.Error(err))
	}

	go monitorRedisConnection(logger)

	go runWithRetry("worker", logger, func() error { return srv.Run(mux) })
	go runWithRetry("scheduler", logger, scheduler.Run)
}

// runWithRetry restarts start with a growing pause and exits the process
// after maxStartAttempts failures.
func runWithRetry(name string, logger *zap.Logger, start func() error) {
	logger.Info("Starting background "+name, zap.String("component", name))
	for attempts := 1; attempts <= maxStartAttempts; attempts++ {
		err := start()
		if err == nil {
			return
		}
		logger.Error("Background "+name+" failed to start",
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", maxStartAttempts),
			zap.Error(err))
		if attempts == maxStartAttempts {
			logger.Fatal("Max retry attempts reached. Exiting.", zap.String("component", name))
		}
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ctx := context.Background()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Queue Redis connection lost", zap.Error(err))
		}
	}
}
