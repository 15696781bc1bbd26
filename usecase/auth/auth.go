package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const (
	tokenBytes       = 20
	maxHandleRetries = 5
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email            string
	Fullname         string
	Password         string
	RepeatedPassword string
}

// Result is returned by registration and login.
type Result struct {
	Token domain.Token
	User  domain.User
}

type UseCase struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	bcryptCost int
	logger     *zap.Logger
}

func New(users repository.UserRepository, tokens repository.TokenRepository, bcryptCost int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account and issues its token. The stored password is a bcrypt hash.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	if in.Password != in.RepeatedPassword {
		return nil, domain.ErrPasswordMismatch
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	base := domain.DeriveUsername(in.Fullname)
	if base == "" {
		return nil, domain.FieldError("fullname", "This field may not be blank.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.FieldError("password", "Password is too long.")
		}
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Fullname:     strings.TrimSpace(in.Fullname),
		PasswordHash: string(hash),
	}

	for attempt := 0; ; attempt++ {
		user.Username, err = uc.uniqueUsername(ctx, base)
		if err != nil {
			return nil, err
		}
		err = uc.users.Create(ctx, user)
		if err == nil {
			break
		}
		// a concurrent registration may grab the same handle between the check and the insert
		if domain.IsDomainError(err, domain.ErrCodeConflict) && !errors.Is(err, domain.ErrEmailTaken) && attempt < maxHandleRetries {
			continue
		}
		return nil, err
	}

	token, err := uc.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("account registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return &Result{Token: *token, User: *user}, nil
}

// Login verifies credentials and returns the account's token, issuing one on first use.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Debug("password verification failed", zap.Int64("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := uc.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Token: *token, User: *user}, nil
}

// Authenticate resolves a bearer token to its account.
func (uc *UseCase) Authenticate(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrNotAuthenticated
	}
	token, err := uc.tokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the token so later requests carrying it are rejected.
func (uc *UseCase) Logout(ctx context.Context, key string) error {
	if err := uc.tokens.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrTokenNotFound) {
		return err
	}
	return nil
}

func (uc *UseCase) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := uc.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, counter)
	}
}

func (uc *UseCase) issueToken(ctx context.Context, userID int64) (*domain.Token, error) {
	token, err := uc.tokens.GetByUser(ctx, userID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrTokenNotFound) {
		return nil, err
	}

	key, err := newTokenKey()
	if err != nil {
		return nil, err
	}
	token = &domain.Token{Key: key, UserID: userID}
	if err := uc.tokens.Create(ctx, token); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			return uc.tokens.GetByUser(ctx, userID)
		}
		return nil, err
	}
	return token, nil
}

func newTokenKey() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
