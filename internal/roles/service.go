package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskward/taskward/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context) ([]Role, error)
	GetByID(ctx context.Context, id int64) (Role, error)
	CountPermissions(ctx context.Context, ids []int64) (int, error)
	Create(ctx context.Context, name, description string, permissionIDs []int64) (Role, error)
	Update(ctx context.Context, id int64, name, description string, permissionIDs []int64, replacePermissions bool) (Role, error)
	Delete(ctx context.Context, id int64) error
	AddPermission(ctx context.Context, roleID, permissionID int64) error
	RemovePermission(ctx context.Context, roleID, permissionID int64) error
	HasPermission(ctx context.Context, roleID int64, permissionName string) (bool, error)
}

// Service handles role store business rules.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// verifyPermissionIDs runs the set-cardinality check: every requested id
// must resolve to an existing permission.
func (s *Service) verifyPermissionIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	deduped := make([]int64, 0, len(unique))
	for id := range unique {
		deduped = append(deduped, id)
	}
	count, err := s.repo.CountPermissions(ctx, deduped)
	if err != nil {
		return err
	}
	if count != len(deduped) {
		return fmt.Errorf("%w: one or more permission ids do not exist", shared.ErrValidation)
	}
	return nil
}

// List returns all roles with resolved permissions.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get fetches one role.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new non-system role with an initial permission set.
// The cardinality check runs before the insert so no partial role is ever
// created.
func (s *Service) Create(ctx context.Context, name, description string, permissionIDs []int64) (Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	if err := s.verifyPermissionIDs(ctx, permissionIDs); err != nil {
		return Role{}, err
	}
	return s.repo.Create(ctx, name, description, permissionIDs)
}

// Update changes a role. System roles refuse a name change; a provided
// permission list replaces the current set wholesale.
func (s *Service) Update(ctx context.Context, id int64, name, description *string, permissionIDs []int64) (Role, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Role{}, err
	}

	newName := current.Name
	if name != nil {
		candidate := strings.ToLower(strings.TrimSpace(*name))
		if candidate == "" {
			return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
		}
		if current.IsSystem && candidate != current.Name {
			return Role{}, fmt.Errorf("%w: system role cannot be renamed", shared.ErrProtectedResource)
		}
		newName = candidate
	}
	newDescription := current.Description
	if description != nil {
		newDescription = *description
	}

	replace := permissionIDs != nil
	if replace {
		if err := s.verifyPermissionIDs(ctx, permissionIDs); err != nil {
			return Role{}, err
		}
	}
	return s.repo.Update(ctx, id, newName, newDescription, permissionIDs, replace)
}

// Delete removes a role unless it is system-flagged. Users still assigned
// to the role are not checked or reassigned; the dangling membership is a
// documented limitation of the current design.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("%w: system role cannot be deleted", shared.ErrProtectedResource)
	}
	return s.repo.Delete(ctx, id)
}

// AddPermission attaches one permission by id, idempotently.
func (s *Service) AddPermission(ctx context.Context, roleID, permissionID int64) (Role, error) {
	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		return Role{}, err
	}
	if err := s.verifyPermissionIDs(ctx, []int64{permissionID}); err != nil {
		return Role{}, err
	}
	if err := s.repo.AddPermission(ctx, roleID, permissionID); err != nil {
		return Role{}, err
	}
	return s.repo.GetByID(ctx, roleID)
}

// RemovePermission detaches one permission by id.
func (s *Service) RemovePermission(ctx context.Context, roleID, permissionID int64) (Role, error) {
	if _, err := s.repo.GetByID(ctx, roleID); err != nil {
		return Role{}, err
	}
	if err := s.repo.RemovePermission(ctx, roleID, permissionID); err != nil {
		return Role{}, err
	}
	return s.repo.GetByID(ctx, roleID)
}

// HasPermission checks membership by permission name.
func (s *Service) HasPermission(ctx context.Context, roleID int64, permissionName string) (bool, error) {
	return s.repo.HasPermission(ctx, roleID, permissionName)
}
