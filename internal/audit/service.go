package audit

import (
	"context"

	"github.com/taskward/taskward/internal/shared"
)

// RepositoryPort is the storage surface the service depends on.
type RepositoryPort interface {
	Query(ctx context.Context, f QueryFilters) ([]Entry, int64, error)
	GetByID(ctx context.Context, id int64) (Entry, error)
	Stats(ctx context.Context) (Stats, error)
}

// Service reads the audit trail. Writing goes through Recorder, never
// through here; the trail is append-only.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListParams are the caller-facing query options.
type ListParams struct {
	QueryFilters
	Page    int
	PerPage int
}

// List returns a page of entries, newest first, with paging metadata.
func (s *Service) List(ctx context.Context, params ListParams) ([]Entry, shared.Pagination, error) {
	params.Page, params.PerPage = shared.NormalizePage(params.Page, params.PerPage)
	filters := params.QueryFilters
	filters.Limit = params.PerPage
	filters.Offset = (params.Page - 1) * params.PerPage

	entries, total, err := s.repo.Query(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(params.Page, params.PerPage, int(total)), nil
}

// Get fetches one entry by id.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// Overview aggregates activity statistics.
func (s *Service) Overview(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
