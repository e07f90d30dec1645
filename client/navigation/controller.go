// Package navigation moves a visitor between the anonymous, authenticating and
// authenticated states based on session checks and explicit user actions.
package navigation

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// DefaultGracePeriod is how long the sign-up acknowledgment stays visible.
const DefaultGracePeriod = 1500 * time.Millisecond

// ErrClosed is returned by Wait once the controller has been torn down.
var ErrClosed = errors.New("navigation controller closed")

// Gate is the session authority the controller consults.
type Gate interface {
	CurrentSession(ctx context.Context) (*domain.Session, bool)
	SignIn(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	SignUp(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	SignOut(ctx context.Context) domain.View
}

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// Config controls the delayed sign-up transition.
type Config struct {
	GracePeriod time.Duration
	// AfterFunc schedules f after d. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) Timer
}

// Controller owns the navigation state machine. It is safe for concurrent use;
// no lock is held while the gate is consulted.
type Controller struct {
	gate   Gate
	cfg    Config
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	epoch     uint64
	pending   Timer
	activated bool
	closed    bool
	changed   chan struct{}
	listeners []func(Transition)
}

func New(gate Gate, cfg Config, logger *zap.Logger) *Controller {
	if cfg.GracePeriod < 0 {
		cfg.GracePeriod = 0
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		gate:    gate,
		cfg:     cfg,
		logger:  logger,
		changed: make(chan struct{}),
	}
}

// OnTransition registers a listener called synchronously after every transition.
func (c *Controller) OnTransition(fn func(Transition)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate resolves the initial state with one session check. Later calls return
// the current state without checking again.
func (c *Controller) Activate(ctx context.Context) State {
	c.mu.Lock()
	if c.activated {
		state := c.state
		c.mu.Unlock()
		return state
	}
	c.mu.Unlock()

	_, ok := c.gate.CurrentSession(ctx)

	c.mu.Lock()
	var trs []Transition
	if !c.activated && !c.closed {
		c.activated = true
		if ok {
			trs = c.moveLocked(authenticated(), "existing session")
		} else {
			trs = c.moveLocked(anonymous(), "no session")
		}
	}
	state := c.state
	c.mu.Unlock()
	c.emit(trs)
	return state
}

// EnterLanding is called whenever the landing view is opened. A visitor with a
// session goes straight to the dashboard.
func (c *Controller) EnterLanding(ctx context.Context) domain.View {
	_, ok := c.gate.CurrentSession(ctx)

	c.mu.Lock()
	c.activated = true
	var trs []Transition
	if ok {
		trs = c.moveLocked(authenticated(), "session present on landing")
	} else {
		trs = c.moveLocked(anonymous(), "landing")
	}
	view := c.state.View()
	c.mu.Unlock()
	c.emit(trs)
	return view
}

// Home is the back action of the sign-in and sign-up views. It behaves like
// opening the landing view, so a confirmed sign-up skips the rest of its delay.
func (c *Controller) Home(ctx context.Context) domain.View {
	return c.EnterLanding(ctx)
}

// EnterProtected is called on entry to any protected view. Without a session the
// visitor drops to anonymous and is redirected to sign-in.
func (c *Controller) EnterProtected(ctx context.Context) (*domain.Session, domain.View) {
	sess, ok := c.gate.CurrentSession(ctx)

	c.mu.Lock()
	c.activated = true
	var trs []Transition
	if ok {
		trs = c.moveLocked(authenticated(), "session present")
	} else {
		trs = c.moveLocked(anonymous(), "session absent")
		trs = append(trs, c.moveLocked(authenticating(domain.ModeSignIn), "redirect to sign-in")...)
		sess = nil
	}
	view := c.state.View()
	c.mu.Unlock()
	c.emit(trs)
	return sess, view
}

// Select switches to the sign-in or sign-up view from any state.
func (c *Controller) Select(mode domain.AuthMode) State {
	if mode != domain.ModeSignUp {
		mode = domain.ModeSignIn
	}
	c.mu.Lock()
	c.activated = true
	trs := c.moveLocked(authenticating(mode), "user selected "+string(mode))
	state := c.state
	c.mu.Unlock()
	c.emit(trs)
	return state
}

// SignIn authenticates and, on confirmation, moves to the dashboard immediately.
func (c *Controller) SignIn(ctx context.Context, creds domain.Credentials) error {
	epoch := c.enterMode(domain.ModeSignIn)

	if _, err := c.gate.SignIn(ctx, creds); err != nil {
		c.setNotice(epoch, domain.MessageOf(err))
		return err
	}

	c.mu.Lock()
	var trs []Transition
	if !c.closed && c.epoch == epoch {
		trs = c.moveLocked(authenticated(), "sign-in confirmed")
	}
	c.mu.Unlock()
	c.emit(trs)
	return nil
}

// SignUp creates the account, shows the acknowledgment, and schedules the move
// to the dashboard after the grace period. The session has to be valid already;
// the delay only keeps the acknowledgment on screen.
func (c *Controller) SignUp(ctx context.Context, creds domain.Credentials) error {
	epoch := c.enterMode(domain.ModeSignUp)

	sess, err := c.gate.SignUp(ctx, creds)
	if err != nil {
		c.setNotice(epoch, domain.MessageOf(err))
		return err
	}

	c.mu.Lock()
	// The visitor navigated away while the call was in flight.
	if c.closed || c.epoch != epoch {
		c.mu.Unlock()
		return nil
	}

	if !sess.Valid() {
		next := authenticating(domain.ModeSignIn)
		next.Notice = "Account created. Confirm your email address, then sign in."
		trs := c.moveLocked(next, "sign-up confirmed without session")
		c.mu.Unlock()
		c.emit(trs)
		return nil
	}

	if c.cfg.GracePeriod == 0 {
		trs := c.moveLocked(authenticated(), "sign-up confirmed")
		c.mu.Unlock()
		c.emit(trs)
		return nil
	}

	ack := authenticating(domain.ModeSignUp)
	ack.Confirmed = true
	ack.Notice = "Account created! Redirecting you to your dashboard..."
	trs := c.moveLocked(ack, "sign-up confirmed")
	epoch = c.epoch
	c.pending = c.cfg.AfterFunc(c.cfg.GracePeriod, func() { c.finishSignUp(epoch) })
	c.mu.Unlock()
	c.emit(trs)
	return nil
}

// SignOut invalidates the session and returns to the landing view. It always
// succeeds from the navigation point of view.
func (c *Controller) SignOut(ctx context.Context) domain.View {
	view := c.gate.SignOut(ctx)

	c.mu.Lock()
	var trs []Transition
	if !c.closed {
		c.activated = true
		trs = c.moveLocked(anonymous(), "signed out")
	}
	c.mu.Unlock()
	c.emit(trs)
	return view
}

// Wait blocks until cond holds for the current state, ctx ends, or the controller closes.
func (c *Controller) Wait(ctx context.Context, cond func(State) bool) (State, error) {
	for {
		c.mu.Lock()
		state, closed, changed := c.state, c.closed, c.changed
		c.mu.Unlock()

		if cond(state) {
			return state, nil
		}
		if closed {
			return state, ErrClosed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return state, ctx.Err()
		}
	}
}

// Close tears the controller down and cancels a pending delayed transition.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopPendingLocked()
	close(c.changed)
}

func (c *Controller) finishSignUp(epoch uint64) {
	c.mu.Lock()
	var trs []Transition
	if !c.closed && c.epoch == epoch {
		c.pending = nil
		trs = c.moveLocked(authenticated(), "sign-up grace period elapsed")
	}
	c.mu.Unlock()
	c.emit(trs)
}

// enterMode shows the form being submitted and returns the epoch the
// submission's completion must still find.
func (c *Controller) enterMode(mode domain.AuthMode) uint64 {
	c.mu.Lock()
	c.activated = true
	var trs []Transition
	if c.state.Phase != PhaseAuthenticating || c.state.Mode != mode || c.state.Confirmed || c.state.Notice != "" {
		trs = c.moveLocked(authenticating(mode), "submitting "+string(mode))
	}
	epoch := c.epoch
	c.mu.Unlock()
	c.emit(trs)
	return epoch
}

func (c *Controller) setNotice(epoch uint64, notice string) {
	c.mu.Lock()
	var trs []Transition
	if !c.closed && c.epoch == epoch && c.state.Phase == PhaseAuthenticating {
		next := c.state
		next.Notice = notice
		trs = c.moveLocked(next, "authentication failed")
	}
	c.mu.Unlock()
	c.emit(trs)
}

// moveLocked applies a transition. Any transition invalidates a pending delayed one.
func (c *Controller) moveLocked(to State, reason string) []Transition {
	if c.closed || c.state == to {
		return nil
	}
	from := c.state
	c.state = to
	c.epoch++
	c.stopPendingLocked()

	close(c.changed)
	c.changed = make(chan struct{})

	c.logger.Debug("navigation transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("reason", reason))
	return []Transition{{From: from, To: to, Reason: reason}}
}

func (c *Controller) stopPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) emit(trs []Transition) {
	if len(trs) == 0 {
		return
	}
	c.mu.Lock()
	listeners := append([]func(Transition){}, c.listeners...)
	c.mu.Unlock()
	for _, tr := range trs {
		for _, fn := range listeners {
			fn(tr)
		}
	}
}
