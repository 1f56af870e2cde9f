package audit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskward/taskward/internal/shared"
)

// Repository provides PostgreSQL backed persistence for audit entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one entry to the log. Entries are never updated or
// deleted after this point.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (user_id, action, resource, resource_type, status, changes, error_message, ip_address, user_agent, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.UserID, e.Action, e.Resource, e.ResourceType, e.Status,
		e.Changes, nullable(e.ErrorMessage), nullable(e.IPAddress), nullable(e.UserAgent), e.OccurredAt)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// QueryFilters narrow the listing. Date bounds are inclusive.
type QueryFilters struct {
	UserID    *int64
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

const entrySelect = `
	SELECT a.id, a.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''),
	       a.action, COALESCE(a.resource, ''), a.resource_type, a.status,
	       a.changes, COALESCE(a.error_message, ''), COALESCE(a.ip_address, ''),
	       COALESCE(a.user_agent, ''), a.occurred_at
	FROM audit_logs a
	LEFT JOIN users u ON u.id = a.user_id`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.UserID, &e.UserName, &e.UserEmail,
		&e.Action, &e.Resource, &e.ResourceType, &e.Status,
		&e.Changes, &e.ErrorMessage, &e.IPAddress, &e.UserAgent, &e.OccurredAt)
	return e, err
}

// Query lists entries newest first, with the total count for paging.
func (r *Repository) Query(ctx context.Context, f QueryFilters) ([]Entry, int64, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.UserID != nil {
		add("a.user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		add("a.action = ?", f.Action)
	}
	if f.StartDate != nil {
		add("a.occurred_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		add("a.occurred_at <= ?", *f.EndDate)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs a"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := entrySelect + where + " ORDER BY a.occurred_at DESC" +
		" LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// GetByID fetches one entry with the acting user's name and email joined in.
func (r *Repository) GetByID(ctx context.Context, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, entrySelect+" WHERE a.id = $1", id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: audit entry %d", shared.ErrNotFound, id)
		}
		return Entry{}, err
	}
	return e, nil
}

// Stats aggregates totals, outcome counts, and the five busiest actions
// and users.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'success'),
		       COUNT(*) FILTER (WHERE status = 'error')
		FROM audit_logs`).Scan(&s.Total, &s.SuccessCount, &s.ErrorCount)
	if err != nil {
		return Stats{}, err
	}

	actionRows, err := r.pool.Query(ctx, `
		SELECT action, COUNT(*) AS n
		FROM audit_logs
		GROUP BY action
		ORDER BY n DESC, action
		LIMIT 5`)
	if err != nil {
		return Stats{}, err
	}
	defer actionRows.Close()
	for actionRows.Next() {
		var ac ActionCount
		if err := actionRows.Scan(&ac.Action, &ac.Count); err != nil {
			return Stats{}, err
		}
		s.TopActions = append(s.TopActions, ac)
	}
	if err := actionRows.Err(); err != nil {
		return Stats{}, err
	}

	userRows, err := r.pool.Query(ctx, `
		SELECT a.user_id, COALESCE(u.name, ''), COUNT(*) AS n
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		GROUP BY a.user_id, u.name
		ORDER BY n DESC, a.user_id
		LIMIT 5`)
	if err != nil {
		return Stats{}, err
	}
	defer userRows.Close()
	for userRows.Next() {
		var ua UserActivity
		if err := userRows.Scan(&ua.UserID, &ua.UserName, &ua.Count); err != nil {
			return Stats{}, err
		}
		s.TopUsers = append(s.TopUsers, ua)
	}
	if err := userRows.Err(); err != nil {
		return Stats{}, err
	}
	return s, nil
}
