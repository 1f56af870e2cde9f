package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskward/taskward/internal/shared"
)

// Repository provides PostgreSQL backed persistence for permissions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const permissionColumns = "id, name, description, category, is_system, created_at, updated_at"

func scanPermission(row pgx.Row) (Permission, error) {
	var p Permission
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.IsSystem, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a new permission. A unique-constraint violation on name
// surfaces as shared.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, name, description string, category shared.Category) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, description, category, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		RETURNING `+permissionColumns, name, description, category)
	p, err := scanPermission(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Permission{}, fmt.Errorf("%w: permission %q already exists", shared.ErrDuplicate, name)
		}
		return Permission{}, err
	}
	return p, nil
}

// GetByID fetches a permission by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (Permission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id)
	p, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, fmt.Errorf("%w: permission %d", shared.ErrNotFound, id)
		}
		return Permission{}, err
	}
	return p, nil
}

// Update replaces description and category. The name column is never touched.
func (r *Repository) Update(ctx context.Context, id int64, description string, category shared.Category) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE permissions
		SET description = $2, category = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+permissionColumns, id, description, category)
	p, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, fmt.Errorf("%w: permission %d", shared.ErrNotFound, id)
		}
		return Permission{}, err
	}
	return p, nil
}

// Delete removes a permission. Stale references in role_permissions are left
// in place; the effective-permission join simply never resolves them.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: permission %d", shared.ErrNotFound, id)
	}
	return nil
}

// List returns all permissions ordered by category then name.
func (r *Repository) List(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM permissions ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Categories returns the distinct category values currently in use.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM permissions ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
