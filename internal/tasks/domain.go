// Package tasks implements the task CRUD module guarded by permission
// checks. Updates and deletes additionally require ownership or the
// admin role.
package tasks

import (
	"fmt"
	"time"

	"github.com/taskward/taskward/internal/shared"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Task is one tracked work item.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ParseStatus validates a task status value.
func ParseStatus(raw string) (string, error) {
	switch raw {
	case StatusPending, StatusInProgress, StatusDone:
		return raw, nil
	}
	return "", fmt.Errorf("%w: status must be one of pending, in-progress, done", shared.ErrValidation)
}
