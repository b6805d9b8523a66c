package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"casaora/services/notification"
	"casaora/services/payout"
	"casaora/services/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRunner struct{ runs int }

func (c *countingRunner) RunBatch(_ context.Context, end time.Time) (*payout.BatchResult, error) {
	c.runs++
	return &payout.BatchResult{PeriodEnd: end}, nil
}

func TestNewMuxRoutesPayoutBatch(t *testing.T) {
	runner := &countingRunner{}
	mux := NewMux(notification.LogNotificationService{Logger: zap.NewNop()}, runner, zap.NewNop())

	require.NoError(t, mux.ProcessTask(context.Background(), tasks.NewPayoutBatchTask()))
	assert.Equal(t, 1, runner.runs)
}

func TestRunWithRetry(t *testing.T) {
	calls := 0
	runWithRetry("test", zap.NewNop(), func() error {
		calls++
		if calls == 1 {
			return errors.New("redis not ready")
		}
		return nil
	})
	assert.Equal(t, 2, calls)
}
