// Package cache реализует хранилище подписчиков в Redis.
// Запись хранится как JSON по ключу "subscriber:<userId>" без TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/checkout-bridge/internal/config"
	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

const keyPrefix = "subscriber:"

// Cache хранит записи подписчиков в Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Get возвращает запись подписчика и признак её наличия.
func (c *Cache) Get(ctx context.Context, userID string) (models.Subscriber, bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Subscriber{}, false, nil
	}
	if err != nil {
		return models.Subscriber{}, false, fmt.Errorf("%s: %w", op, err)
	}

	var sub models.Subscriber
	if err := json.Unmarshal(val, &sub); err != nil {
		return models.Subscriber{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return sub, true, nil
}

// Put создаёт или перезаписывает запись подписчика.
func (c *Cache) Put(ctx context.Context, sub models.Subscriber) error {
	const op = "cache.Put"
	jsonData, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(ctx, key(sub.UserID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (c *Cache) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx).Err()
}

// Close закрывает соединение.
func (c *Cache) Close() error {
	return c.Db.Close()
}

func key(userID string) string {
	return keyPrefix + userID
}
