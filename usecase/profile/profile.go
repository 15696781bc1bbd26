package profile

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// GetProfile reloads the requesting account.
func (uc *UseCase) GetProfile(ctx context.Context, requester *domain.User) (*domain.User, error) {
	if requester == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return uc.users.GetByID(ctx, requester.ID)
}

// CheckEmail looks up the account registered under email.
func (uc *UseCase) CheckEmail(ctx context.Context, email string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, domain.FieldError("email", "Email is required")
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrEmailNotFound
		}
		return nil, err
	}
	return user, nil
}
