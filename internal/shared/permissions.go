package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// PermissionName is a validated "resource:action" permission string.
// Construction goes through ParsePermissionName so the pattern is checked
// once instead of being re-validated at every call site.
type PermissionName string

var permissionNamePattern = regexp.MustCompile(`^[a-z]+:[a-z]+$`)

// ParsePermissionName lowercases and validates a raw permission string.
func ParsePermissionName(raw string) (PermissionName, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if !permissionNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: permission name %q must match resource:action", ErrValidation, raw)
	}
	return PermissionName(name), nil
}

func (p PermissionName) String() string { return string(p) }

// Category is the closed set of permission categories.
type Category string

const (
	CategoryTasks       Category = "tasks"
	CategoryUsers       Category = "users"
	CategoryRoles       Category = "roles"
	CategoryReports     Category = "reports"
	CategoryPermissions Category = "permissions"
	CategoryAudit       Category = "audit"
)

// ParseCategory validates a raw category value against the closed set.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryTasks, CategoryUsers, CategoryRoles, CategoryReports, CategoryPermissions, CategoryAudit:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, raw)
}

// Core platform permissions. The seeder provisions all of these as
// system-flagged; route guards reference them by constant.
const (
	PermTasksRead   = "tasks:read"
	PermTasksCreate = "tasks:create"
	PermTasksUpdate = "tasks:update"
	PermTasksDelete = "tasks:delete"

	PermUsersRead   = "users:read"
	PermUsersManage = "users:manage"
	PermUsersDelete = "users:delete"

	PermAuditRead = "audit:read"

	PermPermissionsRead   = "permissions:read"
	PermPermissionsManage = "permissions:manage"

	PermRolesRead   = "roles:read"
	PermRolesManage = "roles:manage"
)
