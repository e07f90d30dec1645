package tasks_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/client/internal/fake"
	"github.com/fastygo/taskboard/client/tasks"
	"github.com/fastygo/taskboard/domain"
)

func setup(t *testing.T) (*tasks.Repository, *fake.Store, *domain.Session) {
	t.Helper()
	provider := fake.NewProvider()
	sess := provider.Seed("a@x.com", "secret1", true)
	store := fake.NewStore()
	return tasks.New(store, nil), store, sess
}

func Test_Repository_CreateThenList(t *testing.T) {
	repo, _, sess := setup(t)
	ctx := context.Background()

	cases := []struct{ title, description string }{
		{"buy milk", ""},
		{"write report", "quarterly numbers"},
		{"ünïcødé ✓", "multi\nline"},
	}

	for _, tc := range cases {
		before, err := repo.List(ctx, sess)
		require.NoError(t, err)

		created, err := repo.Create(ctx, sess, tc.title, tc.description)
		require.NoError(t, err)

		after, err := repo.List(ctx, sess)
		require.NoError(t, err)

		assert.Len(t, after, len(before)+1)
		matches := 0
		for _, task := range after {
			if task.ID == created.ID {
				matches++
				assert.Equal(t, tc.title, task.Title)
				assert.Equal(t, tc.description, task.Description)
				assert.False(t, task.Completed)
				assert.Equal(t, sess.UserID, task.UserID)
			}
		}
		assert.Equal(t, 1, matches)
	}
}

func Test_Repository_Create_EmptyTitleRejectedBeforeCall(t *testing.T) {
	repo, store, sess := setup(t)

	for _, title := range []string{"", "   "} {
		created, err := repo.Create(context.Background(), sess, title, "whatever")
		assert.Nil(t, created)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	}
	assert.Equal(t, 0, store.Calls("Insert"))
}

func Test_Repository_ToggleThenList_FlipsOnlyThatTask(t *testing.T) {
	repo, _, sess := setup(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := repo.Create(ctx, sess, fmt.Sprintf("task %d", i), "")
		require.NoError(t, err)
	}
	before, err := repo.List(ctx, sess)
	require.NoError(t, err)
	target := before[2]

	require.NoError(t, repo.Toggle(ctx, sess, target))

	after, err := repo.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range after {
		if after[i].ID == target.ID {
			assert.Equal(t, !before[i].Completed, after[i].Completed)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	// toggling the refreshed copy flips it back
	require.NoError(t, repo.Toggle(ctx, sess, after[2]))
	again, err := repo.List(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, before, again)
}

func Test_Repository_DeleteThenList(t *testing.T) {
	repo, _, sess := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, sess, fmt.Sprintf("task %d", i), "")
		require.NoError(t, err)
	}
	before, err := repo.List(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, sess, before[1].ID))

	after, err := repo.List(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, after, len(before)-1)
	for _, task := range after {
		assert.NotEqual(t, before[1].ID, task.ID)
	}
}

func Test_Repository_List_IsIdempotentAndNewestFirst(t *testing.T) {
	repo, _, sess := setup(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, sess, fmt.Sprintf("task %d", i), "")
		require.NoError(t, err)
	}

	first, err := repo.List(ctx, sess)
	require.NoError(t, err)
	second, err := repo.List(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].CreatedAt.After(first[i].CreatedAt), "tasks must be newest first")
	}
	assert.Equal(t, "task 4", first[0].Title)
}

func Test_Repository_List_FailureYieldsEmptyAndError(t *testing.T) {
	repo, store, sess := setup(t)
	_, err := repo.Create(context.Background(), sess, "kept", "")
	require.NoError(t, err)
	store.SelectErr = errors.New("store outage")

	list, err := repo.List(context.Background(), sess)

	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeRemote))
}

func Test_Repository_OwnerComesFromSession(t *testing.T) {
	repo, store, sess := setup(t)
	other := fake.NewProvider().Seed("b@x.com", "secret1", true)
	ctx := context.Background()

	_, err := repo.Create(ctx, sess, "mine", "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, other, "theirs", "")
	require.NoError(t, err)

	mine, err := repo.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].Title)
	assert.Len(t, store.Rows(), 2)

	// another owner's row is not reachable through this session
	theirs, err := repo.List(ctx, other)
	require.NoError(t, err)
	err = repo.Delete(ctx, sess, theirs[0].ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeRemote))
	assert.Len(t, store.Rows(), 2)
}

func Test_Repository_RequiresSession(t *testing.T) {
	repo, store, _ := setup(t)

	list, err := repo.List(context.Background(), nil)
	assert.Empty(t, list)
	assert.ErrorIs(t, err, domain.ErrSessionAbsent)

	_, err = repo.Create(context.Background(), nil, "title", "")
	assert.ErrorIs(t, err, domain.ErrSessionAbsent)
	assert.Equal(t, 0, store.Calls("Select")+store.Calls("Insert"))
}
