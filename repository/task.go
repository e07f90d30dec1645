package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskFilter scopes a listing. UserID is mandatory; Completed narrows by state when set.
type TaskFilter struct {
	UserID    string
	Completed *bool
	Limit     int
	Offset    int
}

// TaskRepository stores tasks. Every call is scoped to one owner; rows of other
// owners behave as if they did not exist.
type TaskRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
}
