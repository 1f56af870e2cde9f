package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskward/taskward/jobs"
)

// Recorder accepts entries for eventual persistence. Recording happens
// after the response is written, so failures are logged and swallowed
// rather than surfaced to the client.
type Recorder interface {
	Record(entry Entry)
}

// QueueRecorder hands entries to the background queue. The worker process
// persists them.
type QueueRecorder struct {
	client *jobs.Client
	logger *slog.Logger
}

// NewQueueRecorder constructs a queue-backed recorder.
func NewQueueRecorder(client *jobs.Client, logger *slog.Logger) *QueueRecorder {
	return &QueueRecorder{client: client, logger: logger}
}

// Record enqueues the entry without blocking the request goroutine.
func (r *QueueRecorder) Record(entry Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := r.client.EnqueueAuditRecord(ctx, payloadFromEntry(entry)); err != nil {
			r.logger.Error("audit enqueue failed",
				slog.String("action", entry.Action),
				slog.Int64("user_id", entry.UserID),
				slog.Any("error", err))
		}
	}()
}

// Inserter is the persistence surface the DirectRecorder depends on.
type Inserter interface {
	Insert(ctx context.Context, e Entry) error
}

// DirectRecorder writes entries straight to storage. Used when the queue
// is disabled, and as the worker-side sink.
type DirectRecorder struct {
	repo   Inserter
	logger *slog.Logger
}

// NewDirectRecorder constructs a storage-backed recorder.
func NewDirectRecorder(repo Inserter, logger *slog.Logger) *DirectRecorder {
	return &DirectRecorder{repo: repo, logger: logger}
}

// Record persists the entry in a detached goroutine.
func (r *DirectRecorder) Record(entry Entry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.repo.Insert(ctx, entry); err != nil {
			r.logger.Error("audit insert failed",
				slog.String("action", entry.Action),
				slog.Int64("user_id", entry.UserID),
				slog.Any("error", err))
		}
	}()
}
