// Package tasks performs the remote task CRUD for one session and normalizes the results.
package tasks

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// Store is the row-scoped record store. Implementations scope every call to the
// session's owner; the client never filters rows itself.
type Store interface {
	Select(ctx context.Context, sess *domain.Session) ([]domain.Task, error)
	Insert(ctx context.Context, sess *domain.Session, row domain.NewTask) (*domain.Task, error)
	Update(ctx context.Context, sess *domain.Session, id string, patch domain.TaskPatch) error
	Delete(ctx context.Context, sess *domain.Session, id string) error
}

// Repository issues exactly one store round trip per operation. Callers are
// expected to re-run List after every successful mutation.
type Repository struct {
	store  Store
	logger *zap.Logger
}

func New(store Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		store:  store,
		logger: logger,
	}
}

// List fetches every task of the session owner, newest first. On failure it
// returns an empty list together with the failure.
func (r *Repository) List(ctx context.Context, sess *domain.Session) ([]domain.Task, error) {
	if !sess.Valid() {
		return []domain.Task{}, domain.ErrSessionAbsent
	}

	rows, err := r.store.Select(ctx, sess)
	if err != nil {
		r.logger.Error("fetching tasks failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return []domain.Task{}, remoteFailure("Could not load tasks", err)
	}

	out := make([]domain.Task, len(rows))
	copy(out, rows)
	domain.SortNewestFirst(out)
	return out, nil
}

// Create inserts a task owned by sess. The title is validated before the call is issued.
func (r *Repository) Create(ctx context.Context, sess *domain.Session, title, description string) (*domain.Task, error) {
	title, err := domain.ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	if !sess.Valid() {
		return nil, domain.ErrSessionAbsent
	}

	created, err := r.store.Insert(ctx, sess, domain.NewTask{
		UserID:      sess.UserID,
		Title:       title,
		Description: description,
		Completed:   false,
	})
	if err != nil {
		r.logger.Error("adding task failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, remoteFailure("Error adding task", err)
	}
	return created, nil
}

// Toggle writes the inverse of task.Completed. The local copy is not flipped.
func (r *Repository) Toggle(ctx context.Context, sess *domain.Session, task domain.Task) error {
	if task.ID == "" {
		return domain.NewError(domain.ErrCodeValidation, "Task id is required")
	}
	if !sess.Valid() {
		return domain.ErrSessionAbsent
	}

	completed := !task.Completed
	if err := r.store.Update(ctx, sess, task.ID, domain.TaskPatch{Completed: &completed}); err != nil {
		r.logger.Error("updating task failed", zap.String("task_id", task.ID), zap.Error(err))
		return remoteFailure("Error updating task", err)
	}
	return nil
}

// Delete removes the task with the given id.
func (r *Repository) Delete(ctx context.Context, sess *domain.Session, taskID string) error {
	if taskID == "" {
		return domain.NewError(domain.ErrCodeValidation, "Task id is required")
	}
	if !sess.Valid() {
		return domain.ErrSessionAbsent
	}

	if err := r.store.Delete(ctx, sess, taskID); err != nil {
		r.logger.Error("deleting task failed", zap.String("task_id", taskID), zap.Error(err))
		return remoteFailure("Error deleting task", err)
	}
	return nil
}

// remoteFailure files a store error under REMOTE_FAILURE. An unauthorized reply
// keeps its code so the view can redirect to sign-in.
func remoteFailure(message string, err error) error {
	if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		return domain.WrapError(domain.ErrCodeUnauthorized, message, err)
	}
	return domain.WrapError(domain.ErrCodeRemote, message, err)
}
