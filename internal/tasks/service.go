package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskward/taskward/internal/shared"
)

// AdminRoleName grants update and delete rights over every task,
// regardless of ownership.
const AdminRoleName = "admin"

// RepositoryPort is the storage surface the service depends on.
type RepositoryPort interface {
	Create(ctx context.Context, title, status string, ownerID int64) (Task, error)
	List(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, id int64) (Task, error)
	Update(ctx context.Context, id int64, title, status string) (Task, error)
	Delete(ctx context.Context, id int64) error
}

// RoleChecker answers role-membership questions; permission checks happen
// in the route guards before the service runs.
type RoleChecker interface {
	HasRole(ctx context.Context, userID int64, roleName string) (bool, error)
}

// Service implements task operations.
type Service struct {
	repo  RepositoryPort
	roles RoleChecker
}

// NewService constructs a service.
func NewService(repo RepositoryPort, roles RoleChecker) *Service {
	return &Service{repo: repo, roles: roles}
}

// Create stores a new task owned by the caller. Status defaults to
// pending when omitted.
func (s *Service) Create(ctx context.Context, actorID int64, title, status string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: title is required", shared.ErrValidation)
	}
	if status == "" {
		status = StatusPending
	}
	status, err := ParseStatus(status)
	if err != nil {
		return Task{}, err
	}
	return s.repo.Create(ctx, title, status, actorID)
}

// List returns every task.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

// Get fetches one task.
func (s *Service) Get(ctx context.Context, id int64) (Task, error) {
	return s.repo.GetByID(ctx, id)
}

// Update rewrites a task. Only the owner or an admin may update; nil
// fields keep their current value.
func (s *Service) Update(ctx context.Context, actorID, id int64, title, status *string) (Task, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err := s.authorizeMutation(ctx, actorID, current); err != nil {
		return Task{}, err
	}

	newTitle := current.Title
	if title != nil {
		newTitle = strings.TrimSpace(*title)
		if newTitle == "" {
			return Task{}, fmt.Errorf("%w: title cannot be empty", shared.ErrValidation)
		}
	}
	newStatus := current.Status
	if status != nil {
		newStatus, err = ParseStatus(*status)
		if err != nil {
			return Task{}, err
		}
	}

	updated, err := s.repo.Update(ctx, id, newTitle, newStatus)
	if err != nil {
		return Task{}, err
	}

	// Only fields that actually changed appear in the diff.
	before := map[string]string{}
	after := map[string]string{}
	if updated.Title != current.Title {
		before["title"], after["title"] = current.Title, updated.Title
	}
	if updated.Status != current.Status {
		before["status"], after["status"] = current.Status, updated.Status
	}
	if len(after) > 0 {
		shared.SetAuditChanges(ctx, map[string]any{"before": before, "after": after})
	}
	return updated, nil
}

// Delete removes a task. Only the owner or an admin may delete.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(ctx, actorID, current); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	shared.SetAuditChanges(ctx, map[string]any{"deletedTaskTitle": current.Title})
	return nil
}

func (s *Service) authorizeMutation(ctx context.Context, actorID int64, t Task) error {
	if t.OwnerID == actorID {
		return nil
	}
	isAdmin, err := s.roles.HasRole(ctx, actorID, AdminRoleName)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("%w: not the task owner", shared.ErrAuthorization)
	}
	return nil
}
