package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/client/app"
	"github.com/fastygo/taskboard/client/dashboard"
	"github.com/fastygo/taskboard/client/internal/fake"
	"github.com/fastygo/taskboard/client/navigation"
	"github.com/fastygo/taskboard/domain"
)

func newApp(t *testing.T, provider *fake.Provider, grace time.Duration) (*app.App, *fake.Store) {
	t.Helper()
	store := fake.NewStore()
	a := app.New(provider, store, app.Config{GracePeriod: grace}, nil)
	t.Cleanup(a.Close)
	return a, store
}

func Test_App_SessionQuery_Anonymous(t *testing.T) {
	a, _ := newApp(t, fake.NewProvider(), 0)

	out, err := a.Dispatcher().ExecuteQuery(context.Background(), app.QuerySession, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.ViewLanding, out.(navigation.State).View())
}

func Test_App_SignUpWaitsForDashboard(t *testing.T) {
	// setup
	a, _ := newApp(t, fake.NewProvider(), 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var mu sync.Mutex
	views := []domain.View{}
	a.Navigation().OnTransition(func(tr navigation.Transition) {
		mu.Lock()
		defer mu.Unlock()
		views = append(views, tr.To.View())
	})

	// act
	out, err := a.Dispatcher().ExecuteCommand(ctx, app.CmdSignUp, domain.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	dash, err := a.Dispatcher().ExecuteQuery(ctx, app.QueryDashboard, nil)

	// assert
	require.NoError(t, err)
	assert.Equal(t, navigation.PhaseAuthenticated, out.(navigation.State).Phase)
	snap := dash.(dashboard.Snapshot)
	assert.Equal(t, "a@x.com", snap.UserLabel)
	assert.NotNil(t, snap.Tasks)
	assert.Empty(t, snap.Tasks)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)

	mu.Lock()
	defer mu.Unlock()
	confirmed := indexOf(views, domain.ViewConfirmation)
	require.GreaterOrEqual(t, confirmed, 0, "confirmation view never shown: %v", views)
	assert.Greater(t, indexOf(views, domain.ViewDashboard), confirmed)
}

func indexOf(views []domain.View, target domain.View) int {
	for i, view := range views {
		if view == target {
			return i
		}
	}
	return -1
}

func Test_App_SignInFailureReturnsState(t *testing.T) {
	provider := fake.NewProvider()
	provider.Seed("a@x.com", "secret1", false)
	a, _ := newApp(t, provider, 0)

	out, err := a.Dispatcher().ExecuteCommand(context.Background(), app.CmdSignIn, domain.Credentials{Email: "a@x.com", Password: "nope-nope"})

	require.Error(t, err)
	state := out.(navigation.State)
	assert.Equal(t, domain.ViewSignIn, state.View())
	assert.NotEmpty(t, state.Notice)
}

func Test_App_TaskCommandsWithoutSession(t *testing.T) {
	a, store := newApp(t, fake.NewProvider(), 0)

	out, err := a.Dispatcher().ExecuteCommand(context.Background(), app.CmdTaskCreate, app.TaskInput{Title: "x"})

	assert.ErrorIs(t, err, domain.ErrSessionAbsent)
	assert.Equal(t, domain.ViewSignIn, out.(dashboard.Snapshot).Redirect)
	assert.Empty(t, store.Rows())
}

func Test_App_TaskLifecycle(t *testing.T) {
	// setup
	provider := fake.NewProvider()
	provider.Seed("a@x.com", "secret1", true)
	a, _ := newApp(t, provider, 0)
	ctx := context.Background()
	d := a.Dispatcher()

	// act
	_, err := d.ExecuteCommand(ctx, app.CmdTaskCreate, app.TaskInput{Title: "first"})
	require.NoError(t, err)
	out, err := d.ExecuteCommand(ctx, app.CmdTaskCreate, app.TaskInput{Title: "second", Description: "notes"})
	require.NoError(t, err)
	snap := out.(dashboard.Snapshot)
	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, dashboard.Draft{}, snap.Draft)

	out, err = d.ExecuteCommand(ctx, app.CmdTaskToggle, snap.Tasks[1].ID[:8])
	require.NoError(t, err)
	snap = out.(dashboard.Snapshot)
	assert.True(t, snap.Tasks[1].Completed)

	out, err = d.ExecuteCommand(ctx, app.CmdTaskDelete, snap.Tasks[0].ID)
	require.NoError(t, err)

	// assert
	snap = out.(dashboard.Snapshot)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "first", snap.Tasks[0].Title)
	assert.Equal(t, "a@x.com", snap.UserLabel)
}

func Test_App_SignOut(t *testing.T) {
	provider := fake.NewProvider()
	provider.Seed("a@x.com", "secret1", true)
	a, _ := newApp(t, provider, 0)

	out, err := a.Dispatcher().ExecuteCommand(context.Background(), app.CmdSignOut, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.ViewLanding, out)
	_, err = a.Dispatcher().ExecuteQuery(context.Background(), app.QueryDashboard, nil)
	assert.ErrorIs(t, err, domain.ErrSessionAbsent)
}

func Test_App_UnknownCommand(t *testing.T) {
	a, _ := newApp(t, fake.NewProvider(), 0)

	_, err := a.Dispatcher().ExecuteCommand(context.Background(), "task.archive", nil)

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Contains(t, a.Dispatcher().Commands(), app.CmdTaskCreate)
}

func Test_ResolveTaskID(t *testing.T) {
	list := []domain.Task{{ID: "abc123"}, {ID: "abd456"}}

	id, err := app.ResolveTaskID(list, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	_, err = app.ResolveTaskID(list, "ab")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))

	_, err = app.ResolveTaskID(list, "zzz")
	assert.Error(t, err)

	_, err = app.ResolveTaskID(list, " ")
	assert.Error(t, err)
}

func Test_ResolveTaskID_ExactMatchBeatsEarlierPrefixes(t *testing.T) {
	list := []domain.Task{{ID: "ab1"}, {ID: "ab2"}, {ID: "ab"}}

	id, err := app.ResolveTaskID(list, "ab")

	require.NoError(t, err)
	assert.Equal(t, "ab", id)
}
