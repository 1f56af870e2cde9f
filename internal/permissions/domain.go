// Package permissions implements the permission registry: the catalogue of
// resource:action capability strings, grouped by category, with protection
// for the system-seeded set.
package permissions

import (
	"time"

	"github.com/taskward/taskward/internal/shared"
)

// Permission represents an atomic capability.
type Permission struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    shared.Category `json:"category"`
	IsSystem    bool            `json:"isSystemPermission"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
