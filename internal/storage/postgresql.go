// Package storage реализует хранилище подписчиков на основе PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет, что миграции применены и таблица subscribers существует.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'subscribers'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return errors.New("storage.CheckDatabaseReady: required table subscribers is missing")
	}
	return nil
}

// Get возвращает запись подписчика и признак её наличия.
func (s *Storage) Get(ctx context.Context, userID string) (models.Subscriber, bool, error) {
	const op = "storage.Get"

	query := `SELECT user_id, subscription_status, subscription_expires_at,
			         last_init_reference, plan, updated_at
			  FROM subscribers
			  WHERE user_id = $1`

	var (
		sub       models.Subscriber
		status    string
		expiresAt sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&sub.UserID, &status, &expiresAt, &sub.LastInitReference, &sub.Plan, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscriber{}, false, nil
	}
	if err != nil {
		return models.Subscriber{}, false, fmt.Errorf("%s: %w", op, err)
	}

	sub.SubscriptionStatus = models.SubscriptionStatus(status)
	if expiresAt.Valid {
		t := expiresAt.Time
		sub.SubscriptionExpiresAt = &t
	}
	return sub, true, nil
}

// Put создаёт или целиком перезаписывает запись подписчика.
func (s *Storage) Put(ctx context.Context, sub models.Subscriber) error {
	const op = "storage.Put"

	query := `INSERT INTO subscribers (user_id, subscription_status, subscription_expires_at,
			                          last_init_reference, plan, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_id) DO UPDATE SET
			      subscription_status     = EXCLUDED.subscription_status,
			      subscription_expires_at = EXCLUDED.subscription_expires_at,
			      last_init_reference     = EXCLUDED.last_init_reference,
			      plan                    = EXCLUDED.plan,
			      updated_at              = EXCLUDED.updated_at`

	var expiresAt sql.NullTime
	if sub.SubscriptionExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *sub.SubscriptionExpiresAt, Valid: true}
	}
	_, err := s.DB.ExecContext(ctx, query,
		sub.UserID, string(sub.SubscriptionStatus), expiresAt, sub.LastInitReference, sub.Plan, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ping проверяет доступность базы данных.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
