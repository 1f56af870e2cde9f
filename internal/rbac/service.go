// Package rbac computes effective permissions and gates requests on them.
package rbac

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// RepositoryPort loads the role/permission graph for a user.
type RepositoryPort interface {
	UserPermissionNames(ctx context.Context, userID int64) ([]string, error)
	UserHasRole(ctx context.Context, userID int64, roleName string) (bool, error)
}

// Service is the effective-permission resolver. Results are recomputed on
// every check so role and permission edits take effect on the next request;
// singleflight only collapses concurrent identical lookups, it never serves
// a result across requests.
type Service struct {
	repo  RepositoryPort
	group singleflight.Group
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// EffectivePermissions returns the deduplicated union of permission names
// across all of the user's roles. The lookup runs detached from the
// initiating request's context, so one caller cancelling does not fail
// concurrent sharers of the key; each waiter still honors its own
// cancellation through the select.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	key := strconv.FormatInt(userID, 10)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.repo.UserPermissionNames(context.WithoutCancel(ctx), userID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

// HasPermission reports whether the permission name is in the user's
// effective set.
func (s *Service) HasPermission(ctx context.Context, userID int64, permission string) (bool, error) {
	granted, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range granted {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// HasRole reports whether the user holds a role with the given name.
func (s *Service) HasRole(ctx context.Context, userID int64, roleName string) (bool, error) {
	return s.repo.UserHasRole(ctx, userID, roleName)
}

// Repository resolves the graph with a single join per lookup.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserPermissionNames unions permission names across the user's roles.
// Dangling permission ids in role_permissions drop out of the join.
func (r *Repository) UserPermissionNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UserHasRole checks role membership by role name.
func (r *Repository) UserHasRole(ctx context.Context, userID int64, roleName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles ro ON ro.id = ur.role_id
			WHERE ur.user_id = $1 AND ro.name = $2
		)`, userID, roleName).Scan(&exists)
	return exists, err
}
