package tokenstore_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/tokenstore"
)

func Test_Store_SaveLoadClear(t *testing.T) {
	// setup
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	store, err := tokenstore.Open(path, "")
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, empty)

	sess := &domain.Session{
		ID:          "sid-1",
		UserID:      "user-1",
		Email:       "a@x.com",
		AccessToken: "token-1",
		ExpiresAt:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	// act
	require.NoError(t, store.Save(sess))
	loaded, err := store.Load()

	// assert
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "token-1", loaded.AccessToken)
	assert.Equal(t, "user-1", loaded.UserID)
	assert.True(t, loaded.ExpiresAt.Equal(sess.ExpiresAt))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is fine")
	cleared, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cleared)
}

func Test_Store_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := tokenstore.Open(path, "custom")
	require.NoError(t, err)
	require.NoError(t, store.Save(&domain.Session{UserID: "u", AccessToken: "t"}))
	require.NoError(t, store.Close())

	reopened, err := tokenstore.Open(path, "custom")
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Valid())
}

func Test_Store_ClosedStoreErrors(t *testing.T) {
	var store *tokenstore.Store

	_, err := store.Load()
	assert.Error(t, err)
	assert.Error(t, store.Save(&domain.Session{}))
	assert.NoError(t, store.Close())
}
