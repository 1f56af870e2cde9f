package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestAuditRecordTaskRoundTrip(t *testing.T) {
	payload := AuditRecordPayload{
		UserID:       12,
		Action:       "tasks:delete",
		Resource:     "4",
		ResourceType: "task",
		Status:       "success",
		IPAddress:    "10.0.0.1",
		OccurredAt:   time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
	task, err := NewAuditRecordTask(payload)
	require.NoError(t, err)
	require.Equal(t, TaskTypeAuditRecord, task.Type())

	var decoded AuditRecordPayload
	handler := NewAuditRecordHandler(func(_ context.Context, p AuditRecordPayload) error {
		decoded = p
		return nil
	}, slog.Default())
	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, payload, decoded)
}

func TestAuditRecordHandlerMalformedPayload(t *testing.T) {
	handler := NewAuditRecordHandler(func(context.Context, AuditRecordPayload) error {
		t.Fatal("insert must not run for a malformed payload")
		return nil
	}, slog.Default())

	err := handler(context.Background(), asynq.NewTask(TaskTypeAuditRecord, []byte("{not-json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestAuditRecordHandlerRetriesOnInsertFailure(t *testing.T) {
	insertErr := errors.New("connection reset")
	handler := NewAuditRecordHandler(func(context.Context, AuditRecordPayload) error {
		return insertErr
	}, slog.Default())

	task, err := NewAuditRecordTask(AuditRecordPayload{UserID: 1, Action: "tasks:create"})
	require.NoError(t, err)
	require.ErrorIs(t, handler(context.Background(), task), insertErr)
}
