package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/memory"
)

func newUseCase(t *testing.T) (*UseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store.Users(), store.Tokens(), bcrypt.MinCost, zaptest.NewLogger(t)), store
}

func register(t *testing.T, uc *UseCase, email, fullname string) *Result {
	t.Helper()
	res, err := uc.Register(context.Background(), RegisterInput{
		Email:            email,
		Fullname:         fullname,
		Password:         "s3cret-pass",
		RepeatedPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterStoresHashAndIssuesToken(t *testing.T) {
	uc, store := newUseCase(t)

	res := register(t, uc, "Max@Example.com", "Max Mustermann")
	assert.Len(t, res.Token.Key, 40)
	assert.Equal(t, res.User.ID, res.Token.UserID)
	assert.Equal(t, "max@example.com", res.User.Email)
	assert.Equal(t, "maxmustermann", res.User.Username)
	assert.Equal(t, "Max Mustermann", res.User.Fullname)

	stored, err := store.Users().GetByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterPasswordMismatchCreatesNothing(t *testing.T) {
	uc, store := newUseCase(t)

	_, err := uc.Register(context.Background(), RegisterInput{
		Email:            "a@example.com",
		Fullname:         "A",
		Password:         "one",
		RepeatedPassword: "two",
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = store.Users().GetByEmail(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc, _ := newUseCase(t)
	register(t, uc, "dup@example.com", "First User")

	_, err := uc.Register(context.Background(), RegisterInput{
		Email:            "DUP@example.com",
		Fullname:         "Second User",
		Password:         "x",
		RepeatedPassword: "x",
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
	assert.Equal(t, "This email is already taken", domain.FieldsOf(err)["email"])
}

func TestRegisterHandleCollisionAppendsCounter(t *testing.T) {
	uc, _ := newUseCase(t)

	first := register(t, uc, "1@example.com", "Jane Doe")
	second := register(t, uc, "2@example.com", "jane doe")
	third := register(t, uc, "3@example.com", "JaneDoe")

	assert.Equal(t, "janedoe", first.User.Username)
	assert.Equal(t, "janedoe1", second.User.Username)
	assert.Equal(t, "janedoe2", third.User.Username)
}

func TestLoginReusesToken(t *testing.T) {
	uc, _ := newUseCase(t)
	reg := register(t, uc, "login@example.com", "Log In")

	res, err := uc.Login(context.Background(), "LOGIN@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, reg.Token.Key, res.Token.Key)

	again, err := uc.Login(context.Background(), "login@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, res.Token.Key, again.Token.Key)
}

func TestLoginInvalidCredentials(t *testing.T) {
	uc, _ := newUseCase(t)
	register(t, uc, "who@example.com", "Who")

	_, err := uc.Login(context.Background(), "who@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateAndLogout(t *testing.T) {
	uc, _ := newUseCase(t)
	reg := register(t, uc, "auth@example.com", "Auth User")
	ctx := context.Background()

	user, err := uc.Authenticate(ctx, reg.Token.Key)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = uc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	require.NoError(t, uc.Logout(ctx, reg.Token.Key))
	_, err = uc.Authenticate(ctx, reg.Token.Key)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// a fresh login issues a new token
	res, err := uc.Login(ctx, "auth@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token.Key, res.Token.Key)
}
