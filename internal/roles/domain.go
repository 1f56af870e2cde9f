// Package roles implements the role store: named permission bundles with
// protection for the system-seeded roles.
package roles

import "time"

// Role is a named bundle of permissions.
type Role struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsSystem    bool            `json:"isSystemRole"`
	Permissions []PermissionRef `json:"permissions"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PermissionRef is the resolved view of a permission attached to a role.
// Dangling ids in role_permissions have no resolved view and are omitted.
type PermissionRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
