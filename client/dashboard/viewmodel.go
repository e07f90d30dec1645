// Package dashboard composes the session gate, navigation and task repository into
// the authenticated screen's observable state.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// ErrViewClosed is returned when a call completes after the view was discarded.
var ErrViewClosed = errors.New("dashboard view closed")

// ErrControlBusy rejects a second submission of an action that is still in flight.
var ErrControlBusy = domain.NewError(domain.ErrCodeValidation, "This action is already in progress")

// Navigator is the part of the navigation controller the dashboard drives.
type Navigator interface {
	EnterProtected(ctx context.Context) (*domain.Session, domain.View)
	SignOut(ctx context.Context) domain.View
}

// TaskRepository performs the remote task round trips.
type TaskRepository interface {
	List(ctx context.Context, sess *domain.Session) ([]domain.Task, error)
	Create(ctx context.Context, sess *domain.Session, title, description string) (*domain.Task, error)
	Toggle(ctx context.Context, sess *domain.Session, task domain.Task) error
	Delete(ctx context.Context, sess *domain.Session, taskID string) error
}

// Control identifies a control that is disabled while its own call is in flight.
type Control string

const (
	ControlCreate  Control = "create"
	ControlSignOut Control = "sign-out"
)

func ControlToggle(taskID string) Control { return Control("toggle:" + taskID) }

func ControlDelete(taskID string) Control { return Control("delete:" + taskID) }

// Snapshot is what the presentation layer renders.
type Snapshot struct {
	Tasks     []domain.Task
	Loading   bool
	UserLabel string
	Error     string
	Disabled  []Control
	Redirect  domain.View
	// Draft is the unsubmitted content of the create form.
	Draft Draft
}

// Draft holds the create form fields.
type Draft struct {
	Title       string
	Description string
}

// ViewModel holds the state of one dashboard view instance. Handlers block for
// their round trips and may run concurrently; no lock is held across remote calls.
type ViewModel struct {
	nav    Navigator
	repo   TaskRepository
	logger *zap.Logger

	mu         sync.Mutex
	session    *domain.Session
	tasks      []domain.Task
	loaded     bool
	loading    bool
	label      string
	errMsg     string
	busy       map[Control]bool
	redirect   domain.View
	draft      Draft
	closed     bool
	issuedSeq  uint64
	appliedSeq uint64
}

func New(nav Navigator, repo TaskRepository, logger *zap.Logger) *ViewModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewModel{
		nav:    nav,
		repo:   repo,
		logger: logger,
		tasks:  []domain.Task{},
		busy:   make(map[Control]bool),
	}
}

// Activate checks the session and runs the initial fetch. Without a session it
// returns the redirect target and issues no fetch.
func (vm *ViewModel) Activate(ctx context.Context) (domain.View, error) {
	sess, view := vm.nav.EnterProtected(ctx)

	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return domain.ViewNone, ErrViewClosed
	}
	if sess == nil {
		vm.redirect = view
		vm.mu.Unlock()
		return view, nil
	}
	vm.session = sess
	vm.label = sess.Label()
	vm.redirect = domain.ViewNone
	vm.loading = true
	seq := vm.nextSeqLocked()
	vm.mu.Unlock()

	err := vm.fetch(ctx, sess, seq, true)
	if errors.Is(err, ErrViewClosed) {
		return domain.ViewNone, err
	}
	return domain.ViewDashboard, err
}

// Refresh re-runs the full fetch on user request.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrViewClosed
	}
	sess := vm.session
	if sess == nil {
		vm.mu.Unlock()
		return domain.ErrSessionAbsent
	}
	seq := vm.nextSeqLocked()
	vm.mu.Unlock()
	return vm.fetch(ctx, sess, seq, false)
}

// SetDraft records what the create form currently holds.
func (vm *ViewModel) SetDraft(draft Draft) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.draft = draft
}

// Create adds a task and re-fetches the list. The draft is cleared once the
// insert succeeds and kept when it fails.
func (vm *ViewModel) Create(ctx context.Context, title, description string) error {
	if _, err := domain.ValidateTitle(title); err != nil {
		vm.surface(err)
		return err
	}
	return vm.mutate(ctx, ControlCreate, func(sess *domain.Session) error {
		if _, err := vm.repo.Create(ctx, sess, title, description); err != nil {
			return err
		}
		vm.mu.Lock()
		if !vm.closed {
			vm.draft = Draft{}
		}
		vm.mu.Unlock()
		return nil
	})
}

// Toggle flips the completion of a displayed task and re-fetches the list.
func (vm *ViewModel) Toggle(ctx context.Context, taskID string) error {
	task, ok := vm.find(taskID)
	if !ok {
		err := domain.NewError(domain.ErrCodeValidation, "Task is not in the current list")
		vm.surface(err)
		return err
	}
	return vm.mutate(ctx, ControlToggle(taskID), func(sess *domain.Session) error {
		return vm.repo.Toggle(ctx, sess, task)
	})
}

// Delete removes a task and re-fetches the list.
func (vm *ViewModel) Delete(ctx context.Context, taskID string) error {
	if taskID == "" {
		err := domain.NewError(domain.ErrCodeValidation, "Task id is required")
		vm.surface(err)
		return err
	}
	return vm.mutate(ctx, ControlDelete(taskID), func(sess *domain.Session) error {
		return vm.repo.Delete(ctx, sess, taskID)
	})
}

// SignOut ends the session, forgets the displayed data, and returns the landing view.
func (vm *ViewModel) SignOut(ctx context.Context) domain.View {
	vm.mu.Lock()
	vm.busy[ControlSignOut] = true
	vm.mu.Unlock()

	view := vm.nav.SignOut(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.busy, ControlSignOut)
	if !vm.closed {
		vm.session = nil
		vm.label = ""
		vm.tasks = []domain.Task{}
		vm.redirect = view
	}
	return view
}

// Snapshot returns a copy of the observable state.
func (vm *ViewModel) Snapshot() Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	tasks := make([]domain.Task, len(vm.tasks))
	copy(tasks, vm.tasks)
	disabled := make([]Control, 0, len(vm.busy))
	for control := range vm.busy {
		disabled = append(disabled, control)
	}
	sort.Slice(disabled, func(i, j int) bool { return disabled[i] < disabled[j] })

	return Snapshot{
		Tasks:     tasks,
		Loading:   vm.loading,
		UserLabel: vm.label,
		Error:     vm.errMsg,
		Disabled:  disabled,
		Redirect:  vm.redirect,
		Draft:     vm.draft,
	}
}

// Close discards the view. Completions arriving afterwards leave the state alone.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.closed = true
}

func (vm *ViewModel) mutate(ctx context.Context, control Control, op func(*domain.Session) error) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrViewClosed
	}
	sess := vm.session
	if sess == nil {
		vm.mu.Unlock()
		return domain.ErrSessionAbsent
	}
	if vm.busy[control] {
		vm.mu.Unlock()
		return ErrControlBusy
	}
	vm.busy[control] = true
	vm.errMsg = ""
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		delete(vm.busy, control)
		vm.mu.Unlock()
	}()

	if err := op(sess); err != nil {
		vm.logger.Warn("dashboard action failed", zap.String("control", string(control)), zap.Error(err))
		if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			vm.sessionLost(ctx)
		}
		vm.surface(err)
		return err
	}

	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrViewClosed
	}
	seq := vm.nextSeqLocked()
	vm.mu.Unlock()
	return vm.fetch(ctx, sess, seq, false)
}

// fetch runs List and applies the result unless the view is gone or a newer
// fetch was already applied. A failed fetch keeps the displayed list.
func (vm *ViewModel) fetch(ctx context.Context, sess *domain.Session, seq uint64, initial bool) error {
	list, err := vm.repo.List(ctx, sess)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return ErrViewClosed
	}
	if initial {
		vm.loading = false
	}
	if seq < vm.appliedSeq {
		return err
	}
	if err != nil {
		vm.logger.Error("fetching tasks failed", zap.Error(err))
		vm.errMsg = domain.MessageOf(err)
		if !vm.loaded {
			vm.tasks = []domain.Task{}
		}
		return err
	}
	vm.appliedSeq = seq
	vm.tasks = list
	vm.loaded = true
	return nil
}

func (vm *ViewModel) sessionLost(ctx context.Context) {
	sess, view := vm.nav.EnterProtected(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed || sess != nil {
		return
	}
	vm.session = nil
	vm.redirect = view
}

func (vm *ViewModel) surface(err error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if !vm.closed {
		vm.errMsg = domain.MessageOf(err)
	}
}

func (vm *ViewModel) find(taskID string) (domain.Task, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, task := range vm.tasks {
		if task.ID == taskID {
			return task, true
		}
	}
	return domain.Task{}, false
}

func (vm *ViewModel) nextSeqLocked() uint64 {
	vm.issuedSeq++
	return vm.issuedSeq
}
