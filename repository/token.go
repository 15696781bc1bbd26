package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

type TokenRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.Token, error)
	GetByUser(ctx context.Context, userID int64) (*domain.Token, error)
	Create(ctx context.Context, token *domain.Token) error
	Delete(ctx context.Context, key string) error
}
