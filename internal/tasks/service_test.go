package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskward/taskward/internal/shared"
)

type memoryTaskRepo struct {
	tasks  map[int64]Task
	nextID int64
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{tasks: make(map[int64]Task)}
}

func (r *memoryTaskRepo) Create(_ context.Context, title, status string, ownerID int64) (Task, error) {
	r.nextID++
	t := Task{ID: r.nextID, Title: title, Status: status, OwnerID: ownerID}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *memoryTaskRepo) List(_ context.Context) ([]Task, error) {
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryTaskRepo) GetByID(_ context.Context, id int64) (Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, shared.ErrNotFound
	}
	return t, nil
}

func (r *memoryTaskRepo) Update(_ context.Context, id int64, title, status string) (Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, shared.ErrNotFound
	}
	t.Title = title
	t.Status = status
	r.tasks[id] = t
	return t, nil
}

func (r *memoryTaskRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type staticRoles struct {
	admins map[int64]bool
}

func (s staticRoles) HasRole(_ context.Context, userID int64, roleName string) (bool, error) {
	if roleName != AdminRoleName {
		return false, nil
	}
	return s.admins[userID], nil
}

func TestCreateDefaultsStatus(t *testing.T) {
	svc := NewService(newMemoryTaskRepo(), staticRoles{})
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, "write release notes", "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, task.Status)
	require.Equal(t, int64(1), task.OwnerID)

	_, err = svc.Create(ctx, 1, "   ", "")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Create(ctx, 1, "x", "archived")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateOwnerOrAdmin(t *testing.T) {
	repo := newMemoryTaskRepo()
	svc := NewService(repo, staticRoles{admins: map[int64]bool{99: true}})
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, "triage bug", "")
	require.NoError(t, err)

	status := StatusDone
	// Owner may update.
	updated, err := svc.Update(ctx, 1, task.ID, nil, &status)
	require.NoError(t, err)
	require.Equal(t, StatusDone, updated.Status)
	require.Equal(t, "triage bug", updated.Title)

	// A non-owner without the admin role may not.
	_, err = svc.Update(ctx, 2, task.ID, nil, &status)
	require.ErrorIs(t, err, shared.ErrAuthorization)

	// An admin may update anyone's task.
	title := "triage bug urgently"
	updated, err = svc.Update(ctx, 99, task.ID, &title, nil)
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)
}

func TestUpdateValidation(t *testing.T) {
	repo := newMemoryTaskRepo()
	svc := NewService(repo, staticRoles{})
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, "write docs", "")
	require.NoError(t, err)

	empty := "  "
	_, err = svc.Update(ctx, 1, task.ID, &empty, nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	bad := "archived"
	_, err = svc.Update(ctx, 1, task.ID, nil, &bad)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(ctx, 1, 404, nil, nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteOwnerOrAdmin(t *testing.T) {
	repo := newMemoryTaskRepo()
	svc := NewService(repo, staticRoles{admins: map[int64]bool{99: true}})
	ctx := context.Background()

	mine, err := svc.Create(ctx, 1, "mine", "")
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, 2, "theirs", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, 1, theirs.ID), shared.ErrAuthorization)
	require.NoError(t, svc.Delete(ctx, 1, mine.ID))
	require.NoError(t, svc.Delete(ctx, 99, theirs.ID))
	require.ErrorIs(t, svc.Delete(ctx, 1, 404), shared.ErrNotFound)
}

func TestUpdateCapturesChangedFieldsOnly(t *testing.T) {
	repo := newMemoryTaskRepo()
	svc := NewService(repo, staticRoles{})
	ctx := shared.ContextWithAuditCapture(context.Background())

	task, err := svc.Create(ctx, 1, "ship release", "")
	require.NoError(t, err)

	status := StatusDone
	_, err = svc.Update(ctx, 1, task.ID, nil, &status)
	require.NoError(t, err)

	capture := shared.AuditCaptureFromContext(ctx)
	require.NotNil(t, capture)
	require.Equal(t, map[string]any{
		"before": map[string]string{"status": StatusPending},
		"after":  map[string]string{"status": StatusDone},
	}, capture.Changes)
}

func TestUpdateWithoutChangeCapturesNothing(t *testing.T) {
	repo := newMemoryTaskRepo()
	svc := NewService(repo, staticRoles{})
	ctx := shared.ContextWithAuditCapture(context.Background())

	task, err := svc.Create(ctx, 1, "ship release", "")
	require.NoError(t, err)

	same := task.Title
	_, err = svc.Update(ctx, 1, task.ID, &same, nil)
	require.NoError(t, err)
	require.Nil(t, shared.AuditCaptureFromContext(ctx).Changes)
}

func TestDeleteCapturesTaskTitle(t *testing.T) {
	repo := newMemoryTaskRepo()
	svc := NewService(repo, staticRoles{})
	ctx := shared.ContextWithAuditCapture(context.Background())

	task, err := svc.Create(ctx, 1, "retire feature flag", "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 1, task.ID))

	capture := shared.AuditCaptureFromContext(ctx)
	require.NotNil(t, capture)
	require.Equal(t, map[string]any{"deletedTaskTitle": "retire feature flag"}, capture.Changes)
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{StatusPending, StatusInProgress, StatusDone} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseStatus("Pending"); err == nil {
		t.Error("ParseStatus is case sensitive, expected error")
	}
}
