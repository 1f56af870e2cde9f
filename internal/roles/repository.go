package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskward/taskward/internal/platform/db"
	"github.com/taskward/taskward/internal/shared"
)

// Repository provides PostgreSQL backed persistence for roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func duplicateAware(err error, name string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: role %q already exists", shared.ErrDuplicate, name)
	}
	return err
}

// List returns all roles with their resolved permission sets.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, is_system, created_at, updated_at
		FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Role
	byID := make(map[int64]int)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		role.Permissions = []PermissionRef{}
		byID[role.ID] = len(result)
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	permRows, err := r.pool.Query(ctx, `
		SELECT rp.role_id, p.id, p.name, p.description, p.category
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		ORDER BY p.category, p.name`)
	if err != nil {
		return nil, err
	}
	defer permRows.Close()
	for permRows.Next() {
		var roleID int64
		var ref PermissionRef
		if err := permRows.Scan(&roleID, &ref.ID, &ref.Name, &ref.Description, &ref.Category); err != nil {
			return nil, err
		}
		if idx, ok := byID[roleID]; ok {
			result[idx].Permissions = append(result[idx].Permissions, ref)
		}
	}
	return result, permRows.Err()
}

// GetByID fetches one role with its resolved permission set.
func (r *Repository) GetByID(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_system, created_at, updated_at
		FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("%w: role %d", shared.ErrNotFound, id)
		}
		return Role{}, err
	}
	role.Permissions = []PermissionRef{}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.category
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.category, p.name`, id)
	if err != nil {
		return Role{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref PermissionRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Description, &ref.Category); err != nil {
			return Role{}, err
		}
		role.Permissions = append(role.Permissions, ref)
	}
	return role, rows.Err()
}

// CountPermissions reports how many of the given ids resolve to an existing
// permission. The caller compares against the requested cardinality.
func (r *Repository) CountPermissions(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM permissions WHERE id = ANY($1)`, ids).Scan(&count)
	return count, err
}

// Create inserts a role and its permission set atomically.
func (r *Repository) Create(ctx context.Context, name, description string, permissionIDs []int64) (Role, error) {
	var roleID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO roles (name, description, is_system, created_at, updated_at)
			VALUES ($1, $2, FALSE, NOW(), NOW())
			RETURNING id`, name, description).Scan(&roleID); err != nil {
			return duplicateAware(err, name)
		}
		for _, pid := range permissionIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, roleID, pid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Role{}, err
	}
	return r.GetByID(ctx, roleID)
}

// Update changes name/description and, when replacePermissions is set,
// swaps the permission set wholesale.
func (r *Repository) Update(ctx context.Context, id int64, name, description string, permissionIDs []int64, replacePermissions bool) (Role, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE roles SET name = $2, description = $3, updated_at = NOW()
			WHERE id = $1`, id, name, description)
		if err != nil {
			return duplicateAware(err, name)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: role %d", shared.ErrNotFound, id)
		}
		if !replacePermissions {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, pid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Role{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a role and its permission links. Users still holding the
// role keep a dangling reference; see the role-deletion policy note in the
// service.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: role %d", shared.ErrNotFound, id)
		}
		return nil
	})
}

// AddPermission attaches a permission to a role, idempotently.
func (r *Repository) AddPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, roleID, permissionID)
	return err
}

// RemovePermission detaches a permission from a role.
func (r *Repository) RemovePermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	return err
}

// HasPermission checks membership of a permission name in the role's set.
func (r *Repository) HasPermission(ctx context.Context, roleID int64, permissionName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_permissions rp
			JOIN permissions p ON p.id = rp.permission_id
			WHERE rp.role_id = $1 AND p.name = $2
		)`, roleID, permissionName).Scan(&exists)
	return exists, err
}
