package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventmarket-backend/internal/app/config"

	"github.com/go-redis/redis/v8"
)

const jwtPrefix = "jwt_blacklist:"

// ErrCacheMiss возвращается, когда ключа нет в Redis или он истёк
var ErrCacheMiss = errors.New("ключ не найден в кеше")

// ErrUnavailable возвращается, когда клиент не был инициализирован.
// Сервер умеет работать без Redis, поэтому nil-клиент не ошибка.
var ErrUnavailable = errors.New("redis недоступен")

// Client обёртка над go-redis: blacklist для JWT и полезные нагрузки кеша
type Client struct {
	rdb *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:    cfg.User,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// WriteJWTToBlacklist добавляет токен в blacklist до истечения его срока
func (c *Client) WriteJWTToBlacklist(ctx context.Context, jwtStr string, ttl time.Duration) error {
	if c == nil {
		return ErrUnavailable
	}
	return c.rdb.Set(ctx, jwtPrefix+jwtStr, true, ttl).Err()
}

// CheckJWTInBlacklist возвращает nil, если токен находится в blacklist
func (c *Client) CheckJWTInBlacklist(ctx context.Context, jwtStr string) error {
	if c == nil {
		return ErrUnavailable
	}
	return c.rdb.Get(ctx, jwtPrefix+jwtStr).Err()
}

// SetPayload сохраняет сериализованный ответ с TTL
func (c *Client) SetPayload(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c == nil {
		return ErrUnavailable
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// GetPayload читает сериализованный ответ; ErrCacheMiss если ключа нет
func (c *Client) GetPayload(ctx context.Context, key string) ([]byte, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeletePayload удаляет ключи (отсутствующие ключи не считаются ошибкой)
func (c *Client) DeletePayload(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
