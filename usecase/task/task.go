package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// UseCase enforces task ownership: the acting user always comes from the
// authenticated session, never from the payload.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) CreateTask(ctx context.Context, userID string, input domain.NewTask) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	title, err := domain.ValidateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if input.UserID != "" && input.UserID != userID {
		uc.logger.Warn("ignoring foreign owner in task payload", zap.String("user_id", userID))
	}

	created, err := uc.tasks.Create(ctx, &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: input.Description,
		Completed:   input.Completed,
	})
	if err != nil {
		uc.logger.Error("failed to create task", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if patch.Title != nil {
		title, err := domain.ValidateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	return uc.tasks.Update(ctx, userID, id, patch)
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return uc.tasks.Delete(ctx, userID, id)
}
