package task_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase/task"
)

func Test_UseCase_CreateTask_OwnerFromSession(t *testing.T) {
	// setup
	ctx := context.Background()
	uc := task.New(memory.NewTaskRepository(), nil)

	// act
	created, err := uc.CreateTask(ctx, "alice", domain.NewTask{UserID: "mallory", Title: "  buy milk  "})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "alice", created.UserID)
	assert.Equal(t, "buy milk", created.Title)
	assert.False(t, created.Completed)

	mine, err := uc.ListTasks(ctx, repository.TaskFilter{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := uc.ListTasks(ctx, repository.TaskFilter{UserID: "mallory"})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func Test_UseCase_CreateTask_EmptyTitle(t *testing.T) {
	uc := task.New(memory.NewTaskRepository(), nil)

	_, err := uc.CreateTask(context.Background(), "alice", domain.NewTask{Title: "   "})

	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func Test_UseCase_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	uc := task.New(memory.NewTaskRepository(), nil)
	created, err := uc.CreateTask(ctx, "alice", domain.NewTask{Title: "a"})
	require.NoError(t, err)

	done := true
	updated, err := uc.UpdateTask(ctx, "alice", created.ID, domain.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "a", updated.Title)

	_, err = uc.UpdateTask(ctx, "bob", created.ID, domain.TaskPatch{Completed: &done})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	require.NoError(t, uc.DeleteTask(ctx, "alice", created.ID))
	assert.ErrorIs(t, uc.DeleteTask(ctx, "alice", created.ID), domain.ErrTaskNotFound)
	assert.ErrorIs(t, uc.DeleteTask(ctx, "", created.ID), domain.ErrUnauthorized)
}
