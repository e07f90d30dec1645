// Package session decides whether the caller is authenticated and guards protected views.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// Provider is the identity provider as seen by the client core.
// CurrentSession returns (nil, nil) when nobody is signed in.
type Provider interface {
	SignUp(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	SignIn(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*domain.Session, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Gate answers "who is calling" with one provider round trip per question.
// It keeps no session between calls.
type Gate struct {
	provider Provider
	logger   *zap.Logger
}

func NewGate(provider Provider, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		provider: provider,
		logger:   logger,
	}
}

// CurrentSession queries the provider. A provider failure is treated as "no session".
func (g *Gate) CurrentSession(ctx context.Context) (*domain.Session, bool) {
	sess, err := g.provider.CurrentSession(ctx)
	if err != nil {
		g.logger.Warn("session check failed, treating caller as anonymous", zap.Error(err))
		return nil, false
	}
	if !sess.Valid() {
		return nil, false
	}
	return sess, true
}

// Require is used on entry to a protected view. Without a session it returns the
// redirect target instead.
func (g *Gate) Require(ctx context.Context) (*domain.Session, domain.View) {
	sess, ok := g.CurrentSession(ctx)
	if !ok {
		return nil, domain.ViewSignIn
	}
	return sess, domain.ViewNone
}

// SignIn validates the credentials and asks the provider for a session.
func (g *Gate) SignIn(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	return g.authenticate(ctx, domain.ModeSignIn, creds, g.provider.SignIn)
}

// SignUp validates the credentials and asks the provider to create the account.
func (g *Gate) SignUp(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	return g.authenticate(ctx, domain.ModeSignUp, creds, g.provider.SignUp)
}

func (g *Gate) authenticate(
	ctx context.Context,
	mode domain.AuthMode,
	creds domain.Credentials,
	call func(context.Context, domain.Credentials) (*domain.Session, error),
) (*domain.Session, error) {
	creds = creds.Normalize()
	if err := creds.Validate(mode); err != nil {
		return nil, err
	}

	sess, err := call(ctx, creds)
	if err != nil {
		g.logger.Info("authentication rejected", zap.String("mode", string(mode)), zap.Error(err))
		return nil, asAuthFailure(err)
	}
	return sess, nil
}

// SignOut invalidates the session and always redirects to the landing view,
// whether or not a session existed and whether or not the provider call worked.
func (g *Gate) SignOut(ctx context.Context) domain.View {
	if err := g.provider.SignOut(ctx); err != nil {
		g.logger.Warn("sign-out invalidation failed, local session forgotten anyway", zap.Error(err))
	}
	return domain.ViewLanding
}

// asAuthFailure keeps the provider's message but files it under the auth taxonomy.
// Transport failures stay remote failures.
func asAuthFailure(err error) error {
	switch domain.CodeOf(err) {
	case domain.ErrCodeAuth, domain.ErrCodeValidation, domain.ErrCodeRemote:
		return err
	default:
		return domain.WrapError(domain.ErrCodeAuth, domain.MessageOf(err), err)
	}
}
