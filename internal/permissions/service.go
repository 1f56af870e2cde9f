package permissions

import (
	"context"

	"github.com/taskward/taskward/internal/shared"
)

// RepositoryPort defines data access methods for the registry.
type RepositoryPort interface {
	Create(ctx context.Context, name, description string, category shared.Category) (Permission, error)
	GetByID(ctx context.Context, id int64) (Permission, error)
	Update(ctx context.Context, id int64, description string, category shared.Category) (Permission, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Permission, error)
	Categories(ctx context.Context) ([]string, error)
}

// Service handles permission registry business rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a new non-system permission after validating the
// resource:action pattern and the category enum.
func (s *Service) Create(ctx context.Context, name, description, category string) (Permission, error) {
	parsed, err := shared.ParsePermissionName(name)
	if err != nil {
		return Permission{}, err
	}
	cat, err := shared.ParseCategory(category)
	if err != nil {
		return Permission{}, err
	}
	return s.repo.Create(ctx, parsed.String(), description, cat)
}

// Update changes description and/or category. The name is immutable after
// creation: renaming would silently break every role and permission-check
// reference holding the old string.
func (s *Service) Update(ctx context.Context, id int64, description, category *string) (Permission, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	desc := current.Description
	if description != nil {
		desc = *description
	}
	cat := current.Category
	if category != nil {
		cat, err = shared.ParseCategory(*category)
		if err != nil {
			return Permission{}, err
		}
	}
	return s.repo.Update(ctx, id, desc, cat)
}

// Delete removes a permission unless it is system-flagged.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.IsSystem {
		return shared.ErrProtectedResource
	}
	return s.repo.Delete(ctx, id)
}

// ListGroupedByCategory returns all permissions keyed by category. Each
// group keeps the repository's category-then-name ordering.
func (s *Service) ListGroupedByCategory(ctx context.Context) (map[string][]Permission, int, error) {
	perms, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	grouped := make(map[string][]Permission)
	for _, p := range perms {
		grouped[string(p.Category)] = append(grouped[string(p.Category)], p)
	}
	return grouped, len(perms), nil
}

// ListCategories returns the distinct categories in use.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
