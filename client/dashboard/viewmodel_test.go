package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/client/dashboard"
	"github.com/fastygo/taskboard/client/internal/fake"
	"github.com/fastygo/taskboard/client/navigation"
	"github.com/fastygo/taskboard/client/session"
	"github.com/fastygo/taskboard/client/tasks"
	"github.com/fastygo/taskboard/domain"
)

type fixture struct {
	provider *fake.Provider
	store    *fake.Store
	nav      *navigation.Controller
	vm       *dashboard.ViewModel
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	provider := fake.NewProvider()
	provider.Seed("a@x.com", "secret1", signedIn)
	store := fake.NewStore()
	nav := navigation.New(session.NewGate(provider, nil), navigation.Config{}, nil)
	t.Cleanup(nav.Close)
	vm := dashboard.New(nav, tasks.New(store, nil), nil)
	t.Cleanup(vm.Close)
	return &fixture{provider: provider, store: store, nav: nav, vm: vm}
}

func titles(snap dashboard.Snapshot) []string {
	out := make([]string, 0, len(snap.Tasks))
	for _, task := range snap.Tasks {
		out = append(out, task.Title)
	}
	return out
}

func Test_ViewModel_Activate_WithoutSessionRedirects(t *testing.T) {
	f := newFixture(t, false)

	view, err := f.vm.Activate(context.Background())

	require.NoError(t, err, "a missing session is resolved by redirect, not shown as an error")
	assert.Equal(t, domain.ViewSignIn, view)
	snap := f.vm.Snapshot()
	assert.Equal(t, domain.ViewSignIn, snap.Redirect)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 0, f.store.Calls("Select"))
}

func Test_ViewModel_Activate_LoadsListAndLabel(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	view, err := f.vm.Activate(ctx)

	require.NoError(t, err)
	assert.Equal(t, domain.ViewDashboard, view)
	snap := f.vm.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "a@x.com", snap.UserLabel)
	assert.NotNil(t, snap.Tasks)
	assert.Empty(t, snap.Tasks)
}

func Test_ViewModel_Activate_LoadingOnlyDuringInitialFetch(t *testing.T) {
	f := newFixture(t, true)
	hold := make(chan struct{})
	f.store.SetHold(hold)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.vm.Activate(context.Background())
	}()

	assert.Eventually(t, func() bool { return f.vm.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	close(hold)
	<-done
	assert.False(t, f.vm.Snapshot().Loading)
}

func Test_ViewModel_Activate_InitialListOutage(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectErr = errors.New("store outage")

	view, err := f.vm.Activate(context.Background())

	assert.Equal(t, domain.ViewDashboard, view)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeRemote))
	snap := f.vm.Snapshot()
	assert.False(t, snap.Loading, "loading must clear even when the fetch fails")
	assert.NotNil(t, snap.Tasks)
	assert.Empty(t, snap.Tasks)
	assert.Equal(t, "Could not load tasks", snap.Error)
}

func Test_ViewModel_Create_RefetchesAfterSuccess(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)

	require.NoError(t, f.vm.Create(ctx, "first", ""))
	require.NoError(t, f.vm.Create(ctx, "second", "with details"))

	snap := f.vm.Snapshot()
	assert.Equal(t, []string{"second", "first"}, titles(snap))
	assert.Equal(t, "with details", snap.Tasks[0].Description)
	assert.Equal(t, 3, f.store.Calls("Select"), "one initial fetch plus one per mutation")
	assert.Empty(t, snap.Disabled)
}

func Test_ViewModel_Create_EmptyTitleRejectedBeforeCall(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)

	err = f.vm.Create(ctx, "", "description only")

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	assert.Equal(t, 0, f.store.Calls("Insert"))
	assert.Equal(t, "Task title is required", f.vm.Snapshot().Error)
}

func Test_ViewModel_Toggle_ShowsServerTruth(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)
	require.NoError(t, f.vm.Create(ctx, "a", ""))
	require.NoError(t, f.vm.Create(ctx, "b", ""))
	target := f.vm.Snapshot().Tasks[1]

	require.NoError(t, f.vm.Toggle(ctx, target.ID))

	snap := f.vm.Snapshot()
	assert.True(t, snap.Tasks[1].Completed)
	assert.False(t, snap.Tasks[0].Completed)
}

func Test_ViewModel_FailedMutationKeepsList(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)
	require.NoError(t, f.vm.Create(ctx, "keep me", ""))
	before := f.vm.Snapshot().Tasks

	f.store.SetErr("Delete", errors.New("server error"))
	err = f.vm.Delete(ctx, before[0].ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeRemote))

	f.store.SetErr("Update", errors.New("server error"))
	err = f.vm.Toggle(ctx, before[0].ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeRemote))

	snap := f.vm.Snapshot()
	assert.Equal(t, before, snap.Tasks)
	assert.Equal(t, "Error updating task", snap.Error)
}

func Test_ViewModel_FailedRefetchKeepsList(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)
	require.NoError(t, f.vm.Create(ctx, "one", ""))
	before := f.vm.Snapshot().Tasks

	f.store.SetErr("Select", errors.New("timeout"))
	err = f.vm.Create(ctx, "two", "")

	assert.Error(t, err)
	assert.Equal(t, before, f.vm.Snapshot().Tasks)
}

func Test_ViewModel_Delete(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)
	require.NoError(t, f.vm.Create(ctx, "a", ""))
	require.NoError(t, f.vm.Create(ctx, "b", ""))
	victim := f.vm.Snapshot().Tasks[0]

	require.NoError(t, f.vm.Delete(ctx, victim.ID))

	assert.Equal(t, []string{"a"}, titles(f.vm.Snapshot()))
}

func Test_ViewModel_ControlDisabledWhileInFlight(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)

	hold := make(chan struct{})
	f.store.SetHold(hold)
	done := make(chan error, 1)
	go func() { done <- f.vm.Create(ctx, "slow", "") }()

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]dashboard.Control{dashboard.ControlCreate}, f.vm.Snapshot().Disabled)
	}, time.Second, 5*time.Millisecond)

	err = f.vm.Create(ctx, "duplicate", "")
	assert.ErrorIs(t, err, dashboard.ErrControlBusy)

	close(hold)
	require.NoError(t, <-done)
	snap := f.vm.Snapshot()
	assert.Empty(t, snap.Disabled)
	assert.Equal(t, []string{"slow"}, titles(snap))
}

func Test_ViewModel_LateCompletionAfterCloseIsIgnored(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)
	before := f.vm.Snapshot()

	hold := make(chan struct{})
	f.store.SetHold(hold)
	done := make(chan error, 1)
	go func() { done <- f.vm.Create(ctx, "late", "") }()
	assert.Eventually(t, func() bool { return len(f.vm.Snapshot().Disabled) == 1 }, time.Second, 5*time.Millisecond)

	f.vm.Close()
	close(hold)

	assert.ErrorIs(t, <-done, dashboard.ErrViewClosed)
	assert.Equal(t, before.Tasks, f.vm.Snapshot().Tasks)
	assert.Len(t, f.store.Rows(), 1, "the remote call itself is not aborted")
}

func Test_ViewModel_SignOut(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)
	require.NoError(t, f.vm.Create(ctx, "private", ""))

	view := f.vm.SignOut(ctx)

	assert.Equal(t, domain.ViewLanding, view)
	snap := f.vm.Snapshot()
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.UserLabel)
	assert.Equal(t, domain.ViewLanding, snap.Redirect)
	assert.Equal(t, navigation.PhaseAnonymous, f.nav.State().Phase)

	err = f.vm.Create(ctx, "after sign-out", "")
	assert.ErrorIs(t, err, domain.ErrSessionAbsent)
}

func Test_ViewModel_UnauthorizedMutationRedirects(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)

	f.provider.Expire()
	f.store.SetErr("Insert", domain.WrapError(domain.ErrCodeUnauthorized, "JWT expired", nil))
	err = f.vm.Create(ctx, "too late", "")

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Equal(t, domain.ViewSignIn, f.vm.Snapshot().Redirect)
}

func Test_ViewModel_Create_ClearsDraftOnlyOnSuccess(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.vm.Activate(ctx)
	require.NoError(t, err)

	f.vm.SetDraft(dashboard.Draft{Title: "draft", Description: "notes"})
	f.store.SetErr("Insert", errors.New("server error"))
	require.Error(t, f.vm.Create(ctx, "draft", "notes"))
	assert.Equal(t, dashboard.Draft{Title: "draft", Description: "notes"}, f.vm.Snapshot().Draft)

	f.store.SetErr("Insert", nil)
	require.NoError(t, f.vm.Create(ctx, "draft", "notes"))
	assert.Equal(t, dashboard.Draft{}, f.vm.Snapshot().Draft)
}
