package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase/auth"
)

func newUseCase() *auth.UseCase {
	return auth.New(
		memory.NewUserRepository(),
		memory.NewSessionRepository(time.Hour),
		auth.Config{Secret: "test-secret", TokenTTL: time.Hour},
		nil,
	)
}

func Test_UseCase_SignUpThenAuthenticate(t *testing.T) {
	// setup
	ctx := context.Background()
	uc := newUseCase()

	// act
	grant, err := uc.SignUp(ctx, domain.Credentials{Email: " Ada@Example.com ", Password: "secret1"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", grant.User.Email)
	assert.NotEmpty(t, grant.Session.AccessToken)

	session, err := uc.Authenticate(ctx, grant.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, grant.User.ID, session.UserID)
	assert.Equal(t, "ada@example.com", session.Email)
}

func Test_UseCase_SignUp_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()
	_, err := uc.SignUp(ctx, domain.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = uc.SignUp(ctx, domain.Credentials{Email: "a@x.com", Password: "other12"})

	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Equal(t, "User already registered", domain.MessageOf(err))
}

func Test_UseCase_SignUp_ShortPassword(t *testing.T) {
	_, err := newUseCase().SignUp(context.Background(), domain.Credentials{Email: "a@x.com", Password: "123"})

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
}

func Test_UseCase_SignIn(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()
	_, err := uc.SignUp(ctx, domain.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	grant, err := uc.SignIn(ctx, domain.Credentials{Email: "A@X.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, grant.Session.AccessToken)

	_, err = uc.SignIn(ctx, domain.Credentials{Email: "a@x.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = uc.SignIn(ctx, domain.Credentials{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func Test_UseCase_SignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()
	grant, err := uc.SignUp(ctx, domain.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, uc.SignOut(ctx, grant.Session.ID))
	require.NoError(t, uc.SignOut(ctx, grant.Session.ID))

	_, err = uc.Authenticate(ctx, grant.Session.AccessToken)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func Test_UseCase_Authenticate_RejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	issuer := newUseCase()
	grant, err := issuer.SignUp(ctx, domain.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = newUseCase().Authenticate(ctx, grant.Session.AccessToken)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	_, err = issuer.Authenticate(ctx, "not-a-token")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}
