// Package jobs defines the background task types and the Asynq worker and
// client wrappers. The audit sink runs through here: the API process
// enqueues decision records after responses complete, and the worker
// process persists them.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditRecord is the task type for persisting one audit entry.
	TaskTypeAuditRecord = "audit:record"
)

// AuditRecordPayload carries a denormalized decision record from the API
// process to the worker.
type AuditRecordPayload struct {
	UserID       int64           `json:"userId"`
	Action       string          `json:"action"`
	Resource     string          `json:"resource,omitempty"`
	ResourceType string          `json:"resourceType"`
	Status       string          `json:"status"`
	Changes      json.RawMessage `json:"changes,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	IPAddress    string          `json:"ipAddress,omitempty"`
	UserAgent    string          `json:"userAgent,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

// NewAuditRecordTask constructs an Asynq task for one audit entry.
func NewAuditRecordTask(payload AuditRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRecord, data), nil
}

// AuditInserter persists one decoded audit payload.
type AuditInserter func(ctx context.Context, payload AuditRecordPayload) error

// NewAuditRecordHandler builds the worker handler for TaskTypeAuditRecord.
// A malformed payload is dropped rather than retried; persistence failures
// are returned so Asynq retries them.
func NewAuditRecordHandler(insert AuditInserter, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditRecordPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			if logger != nil {
				logger.Error("audit payload unmarshal", slog.Any("error", err))
			}
			return asynq.SkipRetry
		}
		return insert(ctx, payload)
	}
}
