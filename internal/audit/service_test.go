package audit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskward/taskward/internal/shared"
)

type memoryAuditRepo struct {
	entries []Entry
}

func (r *memoryAuditRepo) Query(_ context.Context, f QueryFilters) ([]Entry, int64, error) {
	var matched []Entry
	for _, e := range r.entries {
		if f.UserID != nil && e.UserID != *f.UserID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.StartDate != nil && e.OccurredAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.OccurredAt.After(*f.EndDate) {
			continue
		}
		matched = append(matched, e)
	}
	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *memoryAuditRepo) GetByID(_ context.Context, id int64) (Entry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, shared.ErrNotFound
}

func (r *memoryAuditRepo) Stats(_ context.Context) (Stats, error) {
	s := Stats{Total: int64(len(r.entries))}
	for _, e := range r.entries {
		if e.Status == StatusSuccess {
			s.SuccessCount++
		} else {
			s.ErrorCount++
		}
	}
	return s, nil
}

func seedEntries(n int) []Entry {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, Entry{
			ID:         int64(i + 1),
			UserID:     int64(i%3 + 1),
			Action:     "tasks:create",
			Status:     StatusSuccess,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return entries
}

func TestListPagination(t *testing.T) {
	repo := &memoryAuditRepo{entries: seedEntries(45)}
	svc := NewService(repo)

	entries, paging, err := svc.List(context.Background(), ListParams{Page: 2, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, entries, 20)
	require.Equal(t, 45, paging.Total)
	require.Equal(t, 3, paging.TotalPages)
	require.Equal(t, 2, paging.Page)

	entries, paging, err = svc.List(context.Background(), ListParams{Page: 3, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, entries, 5)
	require.Equal(t, 3, paging.TotalPages)
}

func TestListFilters(t *testing.T) {
	repo := &memoryAuditRepo{entries: seedEntries(10)}
	svc := NewService(repo)

	userID := int64(1)
	entries, paging, err := svc.List(context.Background(), ListParams{
		QueryFilters: QueryFilters{UserID: &userID},
	})
	require.NoError(t, err)
	for _, e := range entries {
		require.Equal(t, userID, e.UserID)
	}
	require.Equal(t, len(entries), paging.Total)
}

func TestListDefaults(t *testing.T) {
	repo := &memoryAuditRepo{entries: seedEntries(5)}
	svc := NewService(repo)

	_, paging, err := svc.List(context.Background(), ListParams{Page: -1, PerPage: 0})
	require.NoError(t, err)
	require.Equal(t, 1, paging.Page)
	require.Equal(t, 20, paging.PerPage)
}

func TestParseListParams(t *testing.T) {
	req := httptest.NewRequest("GET", "/admin/audit?page=2&limit=10&userId=7&action=tasks:create&startDate=2026-08-01&endDate=2026-08-15", nil)
	params, err := parseListParams(req)
	require.NoError(t, err)
	require.Equal(t, 2, params.Page)
	require.Equal(t, 10, params.PerPage)
	require.Equal(t, int64(7), *params.UserID)
	require.Equal(t, "tasks:create", params.Action)
	require.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *params.StartDate)
	// End date covers the entire named day.
	require.True(t, params.EndDate.After(time.Date(2026, 8, 15, 23, 59, 59, 0, time.UTC)))

	_, err = parseListParams(httptest.NewRequest("GET", "/admin/audit?userId=abc", nil))
	require.Error(t, err)
	_, err = parseListParams(httptest.NewRequest("GET", "/admin/audit?startDate=15-08-2026", nil))
	require.Error(t, err)
}

func TestOverview(t *testing.T) {
	repo := &memoryAuditRepo{entries: []Entry{
		{ID: 1, Status: StatusSuccess},
		{ID: 2, Status: StatusSuccess},
		{ID: 3, Status: StatusError},
	}}
	svc := NewService(repo)

	stats, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Total)
	require.Equal(t, int64(2), stats.SuccessCount)
	require.Equal(t, int64(1), stats.ErrorCount)
}
