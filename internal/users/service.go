package users

import (
	"context"
	"fmt"

	"github.com/taskward/taskward/internal/shared"
)

// RepositoryPort defines data access methods for user administration.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	CountRoles(ctx context.Context, ids []int64) (int, error)
	SetRoles(ctx context.Context, userID int64, roleIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

// Service handles user administration business rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all users with role references.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// SetRoles replaces a user's role set after verifying every id resolves and
// that the user keeps at least one role.
func (s *Service) SetRoles(ctx context.Context, userID int64, roleIDs []int64) (User, error) {
	if len(roleIDs) == 0 {
		return User{}, fmt.Errorf("%w: a user must hold at least one role", shared.ErrValidation)
	}
	unique := make(map[int64]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		unique[id] = struct{}{}
	}
	deduped := make([]int64, 0, len(unique))
	for id := range unique {
		deduped = append(deduped, id)
	}
	count, err := s.repo.CountRoles(ctx, deduped)
	if err != nil {
		return User{}, err
	}
	if count != len(deduped) {
		return User{}, fmt.Errorf("%w: one or more role ids do not exist", shared.ErrValidation)
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return User{}, err
	}
	if err := s.repo.SetRoles(ctx, userID, deduped); err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, userID)
}

// Delete removes a user. The acting administrator cannot delete their own
// account.
func (s *Service) Delete(ctx context.Context, actorID, userID int64) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ID == actorID {
		return fmt.Errorf("%w: administrators cannot delete their own account", shared.ErrSelfModification)
	}
	return s.repo.Delete(ctx, userID)
}
