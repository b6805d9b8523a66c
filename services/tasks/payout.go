package tasks

import (
	"context"
	"time"

	"casaora/services/payout"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypePayoutBatch = "payout:batch"
	// PayoutSchedule runs the batch every Sunday at midnight UTC.
	PayoutSchedule = "@weekly"
)

// PayoutRunner is the part of the payout service the job drives.
type PayoutRunner interface {
	RunBatch(ctx context.Context, periodEnd time.Time) (*payout.BatchResult, error)
}

func NewPayoutBatchTask() *asynq.Task {
	return asynq.NewTask(TypePayoutBatch, nil, asynq.MaxRetry(1), asynq.Timeout(30*time.Minute))
}

// HandlePayoutBatchTask settles everything completed up to the moment the
// task runs.
func HandlePayoutBatchTask(runner PayoutRunner, now func() time.Time, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		periodEnd := now().UTC()
		res, err := runner.RunBatch(ctx, periodEnd)
		if err != nil {
			logger.Error("Payout batch failed", zap.Time("period_end", periodEnd), zap.Error(err))
			return err
		}
		logger.Info("Payout batch task done", zap.Int("paid", res.Paid), zap.Int("failed", res.Failed))
		return nil
	}
}
