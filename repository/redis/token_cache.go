package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// TokenCache is a read-through cache in front of the durable token store. Every
// authenticated request resolves its bearer token, so lookups by key are served from Redis.
type TokenCache struct {
	next   repository.TokenRepository
	client *redislib.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewTokenCache wraps next with a Redis cache keyed by token key.
func NewTokenCache(next repository.TokenRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) *TokenCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenCache{
		next:   next,
		client: client,
		prefix: "token:",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *TokenCache) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	result, err := c.client.Get(ctx, c.key(key)).Bytes()
	switch {
	case err == nil:
		var token domain.Token
		if err := sonic.Unmarshal(result, &token); err == nil {
			return &token, nil
		}
		c.logger.Warn("discarding malformed cached token")
	case !errors.Is(err, redislib.Nil):
		// fall through to the durable store when redis is unavailable
		c.logger.Warn("token cache read failed", zap.Error(err))
	}

	token, err := c.next.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	c.store(ctx, token)
	return token, nil
}

func (c *TokenCache) GetByUser(ctx context.Context, userID int64) (*domain.Token, error) {
	return c.next.GetByUser(ctx, userID)
}

func (c *TokenCache) Create(ctx context.Context, token *domain.Token) error {
	if err := c.next.Create(ctx, token); err != nil {
		return err
	}
	c.store(ctx, token)
	return nil
}

// Delete evicts the cached entry before and after removing the durable row, so a read-through
// racing the logout cannot leave the token cached. Cache failures are logged, not returned.
func (c *TokenCache) Delete(ctx context.Context, key string) error {
	c.evict(ctx, key)
	if err := c.next.Delete(ctx, key); err != nil {
		return err
	}
	c.evict(ctx, key)
	return nil
}

func (c *TokenCache) evict(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn("token cache evict failed", zap.Error(err))
	}
}

func (c *TokenCache) store(ctx context.Context, token *domain.Token) {
	payload, err := sonic.Marshal(token)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(token.Key), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("token cache write failed", zap.Error(err))
	}
}

func (c *TokenCache) key(tokenKey string) string {
	return fmt.Sprintf("%s%s", c.prefix, tokenKey)
}

var _ repository.TokenRepository = (*TokenCache)(nil)
