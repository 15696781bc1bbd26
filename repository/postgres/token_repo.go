package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns the durable store of issued bearer tokens.
func NewTokenRepository(pool *pgxpool.Pool) repository.TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	const query = `SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1`
	return scanToken(r.pool.QueryRow(ctx, query, key))
}

func (r *tokenRepository) GetByUser(ctx context.Context, userID int64) (*domain.Token, error) {
	const query = `SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`
	return scanToken(r.pool.QueryRow(ctx, query, userID))
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	if token == nil || token.Key == "" {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO auth_tokens (key, user_id, created_at)
	VALUES ($1, $2, COALESCE($3, NOW()))
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, token.Key, token.UserID, nullTime(token.CreatedAt)).Scan(&token.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return domain.WrapError(domain.ErrCodeConflict, "token already issued", err)
		}
		return err
	}
	return nil
}

func (r *tokenRepository) Delete(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func scanToken(row rowScanner) (*domain.Token, error) {
	var token domain.Token
	if err := row.Scan(&token.Key, &token.UserID, &token.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}
