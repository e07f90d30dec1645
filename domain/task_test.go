package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func Test_SortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "mid", CreatedAt: base.Add(time.Hour)},
		{ID: "mid-twin", CreatedAt: base.Add(time.Hour)},
	}

	domain.SortNewestFirst(tasks)

	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"new", "mid", "mid-twin", "old"}, ids)
}

func Test_ValidateTitle(t *testing.T) {
	_, err := domain.ValidateTitle("")
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	_, err = domain.ValidateTitle("   \t")
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	title, err := domain.ValidateTitle("  buy milk ")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", title)
}

func Test_Session_Valid(t *testing.T) {
	var missing *domain.Session
	assert.False(t, missing.Valid())
	assert.Equal(t, "", missing.Label())
	assert.False(t, (&domain.Session{UserID: "u1"}).Valid())
	assert.True(t, (&domain.Session{UserID: "u1", AccessToken: "tok", Email: "a@x.com"}).Valid())
}
