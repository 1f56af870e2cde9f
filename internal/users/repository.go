package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskward/taskward/internal/platform/db"
	"github.com/taskward/taskward/internal/shared"
)

// Repository provides PostgreSQL backed persistence for user administration.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all users with their role references.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	byID := make(map[int64]int)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Roles = []RoleRef{}
		byID[u.ID] = len(result)
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roleRows, err := r.pool.Query(ctx, `
		SELECT ur.user_id, ro.id, ro.name, ro.description
		FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		ORDER BY ro.name`)
	if err != nil {
		return nil, err
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var userID int64
		var ref RoleRef
		if err := roleRows.Scan(&userID, &ref.ID, &ref.Name, &ref.Description); err != nil {
			return nil, err
		}
		if idx, ok := byID[userID]; ok {
			result[idx].Roles = append(result[idx].Roles, ref)
		}
	}
	return result, roleRows.Err()
}

// GetByID fetches one user with role references.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
		}
		return User{}, err
	}
	u.Roles = []RoleRef{}

	rows, err := r.pool.Query(ctx, `
		SELECT ro.id, ro.name, ro.description
		FROM user_roles ur
		JOIN roles ro ON ro.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ro.name`, id)
	if err != nil {
		return User{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref RoleRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Description); err != nil {
			return User{}, err
		}
		u.Roles = append(u.Roles, ref)
	}
	return u, rows.Err()
}

// CountRoles reports how many of the given ids resolve to an existing role.
func (r *Repository) CountRoles(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM roles WHERE id = ANY($1)`, ids).Scan(&count)
	return count, err
}

// SetRoles replaces the user's role set wholesale.
func (r *Repository) SetRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, rid := range roleIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_roles (user_id, role_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, rid); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a user and their role memberships.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
		}
		return nil
	})
}
