// Package memory реализует хранилище подписчиков в памяти процесса.
// Данные теряются при перезапуске; используется по умолчанию и в тестах.
package memory

import (
	"context"
	"sync"

	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

// Store хранит записи подписчиков в map под RWMutex.
// Запись по одному userId перезаписывается целиком (last write wins).
type Store struct {
	mu          sync.RWMutex
	subscribers map[string]models.Subscriber
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{subscribers: make(map[string]models.Subscriber)}
}

// Get возвращает копию записи и признак её наличия.
func (s *Store) Get(ctx context.Context, userID string) (models.Subscriber, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Subscriber{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscribers[userID]
	if !ok {
		return models.Subscriber{}, false, nil
	}
	return clone(sub), true, nil
}

// Put создаёт или перезаписывает запись.
func (s *Store) Put(ctx context.Context, sub models.Subscriber) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers[sub.UserID] = clone(sub)
	return nil
}

// Len возвращает количество записей.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// clone копирует указатель на срок действия, чтобы вызывающий код не менял сохранённую запись.
func clone(sub models.Subscriber) models.Subscriber {
	if sub.SubscriptionExpiresAt != nil {
		exp := *sub.SubscriptionExpiresAt
		sub.SubscriptionExpiresAt = &exp
	}
	return sub
}
