// Package fake provides in-memory stand-ins for the identity provider and the record store.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskboard/domain"
)

// Provider is an in-memory identity provider holding at most one current session,
// the way a browser-held client does.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]account
	current  *domain.Session
	calls    map[string]int

	// Err, when set, is returned by every call.
	Err error
	// SignOutErr, when set, is returned by SignOut only.
	SignOutErr error
	// NoSessionOnSignUp emulates providers that require email confirmation.
	NoSessionOnSignUp bool
	// hold, when set, is received from before SignUp and SignIn answer.
	hold chan struct{}
}

type account struct {
	user     domain.User
	password string
}

func NewProvider() *Provider {
	return &Provider{
		accounts: make(map[string]account),
		calls:    make(map[string]int),
	}
}

// SetHold installs (or with nil removes) the channel SignUp and SignIn wait on.
func (p *Provider) SetHold(hold chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hold = hold
}

func (p *Provider) wait() {
	p.mu.Lock()
	hold := p.hold
	p.mu.Unlock()
	if hold != nil {
		<-hold
	}
}

// Calls reports how many times the named method ran.
func (p *Provider) Calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

// Seed registers an account and, when signedIn is true, makes it the current session.
func (p *Provider) Seed(email, password string, signedIn bool) *domain.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc := p.register(email, password)
	sess := p.issue(acc.user)
	if signedIn {
		p.current = sess
	}
	return sess
}

func (p *Provider) SignUp(_ context.Context, creds domain.Credentials) (*domain.Session, error) {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["SignUp"]++
	if p.Err != nil {
		return nil, p.Err
	}
	if _, exists := p.accounts[creds.Email]; exists {
		return nil, domain.NewError(domain.ErrCodeAuth, "User already registered")
	}
	acc := p.register(creds.Email, creds.Password)
	if p.NoSessionOnSignUp {
		return nil, nil
	}
	p.current = p.issue(acc.user)
	return p.current, nil
}

func (p *Provider) SignIn(_ context.Context, creds domain.Credentials) (*domain.Session, error) {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["SignIn"]++
	if p.Err != nil {
		return nil, p.Err
	}
	acc, ok := p.accounts[creds.Email]
	if !ok || acc.password != creds.Password {
		return nil, domain.NewError(domain.ErrCodeAuth, "Invalid login credentials")
	}
	p.current = p.issue(acc.user)
	return p.current, nil
}

func (p *Provider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["SignOut"]++
	p.current = nil
	if p.SignOutErr != nil {
		return p.SignOutErr
	}
	return p.Err
}

func (p *Provider) CurrentSession(context.Context) (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["CurrentSession"]++
	if p.Err != nil {
		return nil, p.Err
	}
	if p.current == nil {
		return nil, nil
	}
	copied := *p.current
	return &copied, nil
}

func (p *Provider) CurrentUser(context.Context) (*domain.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls["CurrentUser"]++
	if p.Err != nil {
		return nil, p.Err
	}
	if p.current == nil {
		return nil, nil
	}
	acc := p.accounts[p.current.Email]
	user := acc.user
	return &user, nil
}

// Expire drops the current session as if it timed out at the provider.
func (p *Provider) Expire() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
}

func (p *Provider) register(email, password string) account {
	acc := account{
		user: domain.User{
			ID:        uuid.NewString(),
			Email:     email,
			CreatedAt: time.Now(),
		},
		password: password,
	}
	p.accounts[email] = acc
	return acc
}

func (p *Provider) issue(user domain.User) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: "token-" + uuid.NewString(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}
}
