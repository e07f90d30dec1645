package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Claims are carried by every access token.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Grant is the result of a successful sign-up or sign-in.
type Grant struct {
	Session *domain.Session
	User    *domain.User
}

type Config struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// SignUp registers the account and opens its first session.
func (uc *UseCase) SignUp(ctx context.Context, creds domain.Credentials) (*Grant, error) {
	creds = creds.Normalize()
	if err := creds.Validate(domain.ModeSignUp); err != nil {
		return nil, err
	}

	hash, salt, err := hashPassword(creds.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hashing password", err)
	}
	user := &domain.User{
		Email:        strings.ToLower(creds.Email),
		PasswordHash: hash,
		Salt:         salt,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return uc.openSession(ctx, user)
}

// SignIn checks the password and opens a session. Unknown emails and wrong
// passwords are reported the same way.
func (uc *UseCase) SignIn(ctx context.Context, creds domain.Credentials) (*Grant, error) {
	creds = creds.Normalize()
	if err := creds.Validate(domain.ModeSignIn); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByEmail(ctx, strings.ToLower(creds.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if !verifyPassword(creds.Password, user.PasswordHash, user.Salt) {
		uc.logger.Info("sign-in rejected", zap.String("user_id", user.ID))
		return nil, domain.ErrBadCredentials
	}
	return uc.openSession(ctx, user)
}

// SignOut revokes the session. Revoking an unknown session succeeds.
func (uc *UseCase) SignOut(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves an access token to its live session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return []byte(uc.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid or expired token", err)
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "session revoked", err)
		}
		return nil, err
	}
	if session.UserID != claims.Subject || session.IsExpired(uc.now()) {
		return nil, domain.ErrUnauthorized
	}
	session.AccessToken = token
	return session, nil
}

func (uc *UseCase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

func (uc *UseCase) openSession(ctx context.Context, user *domain.User) (*Grant, error) {
	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.TokenTTL),
	}

	claims := Claims{
		Email:     user.Email,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    uc.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "signing token", err)
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	session.AccessToken = token
	return &Grant{Session: session, User: user}, nil
}
