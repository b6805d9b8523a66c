package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"casaora/models"
	"casaora/services/payout"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentPush struct {
	to   uuid.UUID
	data map[string]string
}

type fakeNotifier struct {
	sent []sentPush
	err  error
}

func (f *fakeNotifier) Push(_ context.Context, id uuid.UUID, _, _ string, data map[string]string) error {
	f.sent = append(f.sent, sentPush{to: id, data: data})
	return f.err
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestReminderTaskRoundTrip(t *testing.T) {
	profile := uuid.New()
	fireAt := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	task, opts, err := NewReminderTask(models.ReminderPayload{
		ProfileID: profile.String(),
		BookingID: "b-1",
		Title:     "Upcoming booking",
		Body:      "Tomorrow at 9:00",
	}, fireAt)
	require.NoError(t, err)
	assert.Equal(t, TypeSendReminder, task.Type())
	assert.Len(t, opts, 3)

	var p models.ReminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "2026-03-04T09:00:00Z", p.FireDate)

	n := &fakeNotifier{}
	require.NoError(t, HandleReminderTask(n, zap.NewNop())(context.Background(), task))
	require.Len(t, n.sent, 1)
	assert.Equal(t, profile, n.sent[0].to)
	assert.Equal(t, "b-1", n.sent[0].data["bookingId"])
}

func TestHandleReminderTask_BadPayloadSkipsRetry(t *testing.T) {
	h := HandleReminderTask(&fakeNotifier{}, zap.NewNop())

	err := h(context.Background(), asynq.NewTask(TypeSendReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h(context.Background(), asynq.NewTask(TypeSendReminder, []byte(`{"profileId":"nope"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleReminderTask_PushFailureRetries(t *testing.T) {
	n := &fakeNotifier{err: errors.New("fcm unavailable")}
	task, _, err := NewReminderTask(models.ReminderPayload{ProfileID: uuid.NewString()}, time.Now())
	require.NoError(t, err)
	err = HandleReminderTask(n, zap.NewNop())(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestReminderScheduler(t *testing.T) {
	q := &fakeEnqueuer{}
	s := NewReminderScheduler(q, nil)
	payload := models.ReminderPayload{ProfileID: uuid.NewString(), BookingID: "b-2"}

	require.NoError(t, s.ScheduleReminder(context.Background(), payload, time.Now().Add(time.Hour)))
	require.Len(t, q.tasks, 1)

	q.err = asynq.ErrTaskIDConflict
	assert.NoError(t, s.ScheduleReminder(context.Background(), payload, time.Now().Add(time.Hour)))

	q.err = errors.New("redis down")
	assert.Error(t, s.ScheduleReminder(context.Background(), payload, time.Now().Add(time.Hour)))
}

type fakeRunner struct {
	periodEnd time.Time
	err       error
}

func (f *fakeRunner) RunBatch(_ context.Context, end time.Time) (*payout.BatchResult, error) {
	f.periodEnd = end
	if f.err != nil {
		return nil, f.err
	}
	return &payout.BatchResult{PeriodEnd: end, Paid: 2}, nil
}

func TestHandlePayoutBatchTask(t *testing.T) {
	now := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	r := &fakeRunner{}
	h := HandlePayoutBatchTask(r, func() time.Time { return now }, zap.NewNop())

	require.NoError(t, h(context.Background(), NewPayoutBatchTask()))
	assert.Equal(t, now, r.periodEnd)

	r.err = errors.New("db down")
	assert.Error(t, h(context.Background(), NewPayoutBatchTask()))
}
