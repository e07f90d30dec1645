package remote

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// TokenStore keeps the access token between runs. Load returns (nil, nil) when
// nothing is stored.
type TokenStore interface {
	Load() (*domain.Session, error)
	Save(sess *domain.Session) error
	Clear() error
}

// Identity is the identity provider client.
type Identity struct {
	client *Client
	tokens TokenStore
	logger *zap.Logger
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   int64        `json:"expires_at"`
	SessionID   string       `json:"session_id"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewIdentity(client *Client, tokens TokenStore, logger *zap.Logger) *Identity {
	if tokens == nil {
		tokens = NewMemoryTokens()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Identity{
		client: client,
		tokens: tokens,
		logger: logger,
	}
}

// SignUp creates the account. When the provider holds the session back until the
// email is confirmed, it returns (nil, nil).
func (i *Identity) SignUp(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	var resp authResponse
	if err := i.client.call(ctx, http.MethodPost, "/auth/v1/signup", nil, "", creds, &resp); err != nil {
		return nil, authError(err)
	}
	if resp.AccessToken == "" {
		return nil, nil
	}
	return i.remember(resp)
}

// SignIn exchanges the credentials for a session.
func (i *Identity) SignIn(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	query := url.Values{"grant_type": []string{"password"}}
	var resp authResponse
	if err := i.client.call(ctx, http.MethodPost, "/auth/v1/token", query, "", creds, &resp); err != nil {
		return nil, authError(err)
	}
	if resp.AccessToken == "" {
		return nil, domain.NewError(domain.ErrCodeAuth, "Sign-in returned no session")
	}
	return i.remember(resp)
}

// SignOut invalidates the session remotely and always forgets it locally.
func (i *Identity) SignOut(ctx context.Context) error {
	stored, err := i.tokens.Load()
	if err != nil {
		return i.tokens.Clear()
	}
	if stored == nil {
		return nil
	}

	remoteErr := i.client.call(ctx, http.MethodPost, "/auth/v1/logout", nil, stored.AccessToken, nil, nil)
	if clearErr := i.tokens.Clear(); clearErr != nil {
		return clearErr
	}
	if remoteErr != nil && !domain.IsDomainError(remoteErr, domain.ErrCodeUnauthorized) {
		return remoteErr
	}
	return nil
}

// CurrentSession validates the stored token with the provider.
func (i *Identity) CurrentSession(ctx context.Context) (*domain.Session, error) {
	stored, user, err := i.fetchUser(ctx)
	if err != nil || user == nil {
		return nil, err
	}
	return &domain.Session{
		ID:          stored.ID,
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: stored.AccessToken,
		ExpiresAt:   stored.ExpiresAt,
		CreatedAt:   stored.CreatedAt,
	}, nil
}

// CurrentUser returns the identity behind the stored token.
func (i *Identity) CurrentUser(ctx context.Context) (*domain.User, error) {
	_, user, err := i.fetchUser(ctx)
	if err != nil || user == nil {
		return nil, err
	}
	return &domain.User{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt}, nil
}

func (i *Identity) fetchUser(ctx context.Context) (*domain.Session, *userResponse, error) {
	stored, err := i.tokens.Load()
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrCodeRemote, "reading stored session", err)
	}
	if stored == nil || stored.AccessToken == "" {
		return nil, nil, nil
	}
	if stored.IsExpired(time.Now()) {
		_ = i.tokens.Clear()
		return nil, nil, nil
	}

	var user userResponse
	if err := i.client.call(ctx, http.MethodGet, "/auth/v1/user", nil, stored.AccessToken, nil, &user); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			i.logger.Info("stored session rejected by provider")
			_ = i.tokens.Clear()
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return stored, &user, nil
}

func (i *Identity) remember(resp authResponse) (*domain.Session, error) {
	sess := &domain.Session{
		ID:          resp.SessionID,
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
		CreatedAt:   time.Now().UTC(),
	}
	if resp.ExpiresAt > 0 {
		sess.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	}
	if err := i.tokens.Save(sess); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "storing session", err)
	}
	return sess, nil
}

// authError keeps transport failures as they are and files every rejection by
// the provider under AUTH_FAILURE with its message unchanged.
func authError(err error) error {
	switch domain.CodeOf(err) {
	case domain.ErrCodeRemote, domain.ErrCodeInternal, domain.ErrCodeValidation:
		return err
	default:
		return domain.WrapError(domain.ErrCodeAuth, domain.MessageOf(err), err)
	}
}

// MemoryTokens keeps the token in process memory.
type MemoryTokens struct {
	mu   sync.Mutex
	sess *domain.Session
}

func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{}
}

func (m *MemoryTokens) Load() (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	copied := *m.sess
	return &copied, nil
}

func (m *MemoryTokens) Save(sess *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *sess
	m.sess = &copied
	return nil
}

func (m *MemoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
