// Package app assembles the client core and exposes it as named commands and queries.
package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/client/dashboard"
	"github.com/fastygo/taskboard/client/navigation"
	"github.com/fastygo/taskboard/client/remote"
	"github.com/fastygo/taskboard/client/session"
	"github.com/fastygo/taskboard/client/tasks"
	"github.com/fastygo/taskboard/domain"
)

const (
	CmdSignIn     = "sign-in"
	CmdSignUp     = "sign-up"
	CmdSignOut    = "sign-out"
	CmdTaskCreate = "task.create"
	CmdTaskToggle = "task.toggle"
	CmdTaskDelete = "task.delete"

	QuerySession   = "session"
	QueryDashboard = "dashboard"
)

// TaskInput is the payload of task.create.
type TaskInput struct {
	Title       string
	Description string
}

type Config struct {
	GracePeriod time.Duration
}

// RemoteConfig describes a client talking to the HTTP backend.
type RemoteConfig struct {
	Remote      remote.Config
	Tokens      remote.TokenStore
	GracePeriod time.Duration
}

// App is one client process: a single navigation controller shared by every
// command, and a fresh dashboard view per command.
type App struct {
	gate       *session.Gate
	nav        *navigation.Controller
	repo       *tasks.Repository
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func New(provider session.Provider, store tasks.Store, cfg Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	gate := session.NewGate(provider, logger.Named("session"))
	a := &App{
		gate:       gate,
		nav:        navigation.New(gate, navigation.Config{GracePeriod: cfg.GracePeriod}, logger.Named("navigation")),
		repo:       tasks.New(store, logger.Named("tasks")),
		dispatcher: NewDispatcher(),
		logger:     logger,
	}
	a.register()
	return a
}

// NewRemote builds an App backed by the identity and record endpoints.
func NewRemote(cfg RemoteConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := remote.NewClient(cfg.Remote, logger.Named("remote"))
	if err != nil {
		return nil, err
	}
	return New(
		remote.NewIdentity(client, cfg.Tokens, logger.Named("identity")),
		remote.NewRecords(client, logger.Named("records")),
		Config{GracePeriod: cfg.GracePeriod},
		logger,
	), nil
}

func (a *App) Dispatcher() *Dispatcher { return a.dispatcher }

func (a *App) Navigation() *navigation.Controller { return a.nav }

// Close cancels a pending delayed transition.
func (a *App) Close() { a.nav.Close() }

func (a *App) register() {
	a.dispatcher.RegisterQuery(QuerySession, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.nav.Activate(ctx), nil
	})
	a.dispatcher.RegisterQuery(QueryDashboard, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.withDashboard(ctx, nil)
	})

	a.dispatcher.RegisterCommand(CmdSignIn, func(ctx context.Context, payload interface{}) (interface{}, error) {
		creds, err := credentials(payload)
		if err != nil {
			return nil, err
		}
		a.nav.Activate(ctx)
		a.nav.Select(domain.ModeSignIn)
		err = a.nav.SignIn(ctx, creds)
		return a.nav.State(), err
	})
	a.dispatcher.RegisterCommand(CmdSignUp, func(ctx context.Context, payload interface{}) (interface{}, error) {
		creds, err := credentials(payload)
		if err != nil {
			return nil, err
		}
		a.nav.Activate(ctx)
		a.nav.Select(domain.ModeSignUp)
		if err := a.nav.SignUp(ctx, creds); err != nil {
			return a.nav.State(), err
		}
		state := a.nav.State()
		if state.Phase == navigation.PhaseAuthenticating && state.Confirmed {
			return a.nav.Wait(ctx, func(s navigation.State) bool {
				return s.Phase != navigation.PhaseAuthenticating || !s.Confirmed
			})
		}
		return state, nil
	})
	a.dispatcher.RegisterCommand(CmdSignOut, func(ctx context.Context, _ interface{}) (interface{}, error) {
		return a.nav.SignOut(ctx), nil
	})

	a.dispatcher.RegisterCommand(CmdTaskCreate, func(ctx context.Context, payload interface{}) (interface{}, error) {
		input, ok := payload.(TaskInput)
		if !ok {
			return nil, domain.ErrInvalidPayload
		}
		return a.withDashboard(ctx, func(vm *dashboard.ViewModel, _ dashboard.Snapshot) error {
			vm.SetDraft(dashboard.Draft{Title: input.Title, Description: input.Description})
			return vm.Create(ctx, input.Title, input.Description)
		})
	})
	a.dispatcher.RegisterCommand(CmdTaskToggle, func(ctx context.Context, payload interface{}) (interface{}, error) {
		ref, _ := payload.(string)
		return a.withDashboard(ctx, func(vm *dashboard.ViewModel, snap dashboard.Snapshot) error {
			id, err := ResolveTaskID(snap.Tasks, ref)
			if err != nil {
				return err
			}
			return vm.Toggle(ctx, id)
		})
	})
	a.dispatcher.RegisterCommand(CmdTaskDelete, func(ctx context.Context, payload interface{}) (interface{}, error) {
		ref, _ := payload.(string)
		return a.withDashboard(ctx, func(vm *dashboard.ViewModel, snap dashboard.Snapshot) error {
			id, err := ResolveTaskID(snap.Tasks, ref)
			if err != nil {
				return err
			}
			return vm.Delete(ctx, id)
		})
	})
}

// withDashboard opens a dashboard view, runs action once the initial fetch
// succeeded, and returns the final snapshot. Without a session the snapshot
// carries the redirect and the error is domain.ErrSessionAbsent.
func (a *App) withDashboard(ctx context.Context, action func(*dashboard.ViewModel, dashboard.Snapshot) error) (dashboard.Snapshot, error) {
	vm := dashboard.New(a.nav, a.repo, a.logger.Named("dashboard"))
	defer vm.Close()

	view, err := vm.Activate(ctx)
	if view != domain.ViewDashboard {
		if err == nil {
			err = domain.ErrSessionAbsent
		}
		return vm.Snapshot(), err
	}
	if err != nil || action == nil {
		return vm.Snapshot(), err
	}
	err = action(vm, vm.Snapshot())
	return vm.Snapshot(), err
}

// ResolveTaskID accepts a full id or an unambiguous prefix of a displayed task's id.
func ResolveTaskID(list []domain.Task, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", domain.NewError(domain.ErrCodeValidation, "Task id is required")
	}
	for _, task := range list {
		if task.ID == ref {
			return ref, nil
		}
	}
	match := ""
	for _, task := range list {
		if strings.HasPrefix(task.ID, ref) {
			if match != "" {
				return "", domain.NewError(domain.ErrCodeValidation, "Task id "+ref+" is ambiguous")
			}
			match = task.ID
		}
	}
	if match == "" {
		return "", domain.NewError(domain.ErrCodeValidation, "No task matches "+ref)
	}
	return match, nil
}

func credentials(payload interface{}) (domain.Credentials, error) {
	creds, ok := payload.(domain.Credentials)
	if !ok {
		return domain.Credentials{}, domain.ErrInvalidPayload
	}
	return creds, nil
}
