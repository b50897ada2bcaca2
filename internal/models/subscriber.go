// Package models содержит доменные структуры сервиса: запись подписчика
// и событие активации подписки.
package models

import "time"

// SubscriptionStatus описывает состояние подписки пользователя.
type SubscriptionStatus string

const (
	// StatusFree - подписка не оплачена (или записи о пользователе нет).
	StatusFree SubscriptionStatus = "free"
	// StatusActive - подписка оплачена и подтверждена платёжным шлюзом.
	StatusActive SubscriptionStatus = "active"
)

// Subscriber представляет локальную запись о подписке пользователя.
// Запись появляется только после успешной проверки транзакции;
// отсутствие записи означает статус free.
type Subscriber struct {
	UserID                string             `json:"user_id"`
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status"`
	SubscriptionExpiresAt *time.Time         `json:"subscription_expires_at,omitempty"` // Срок действия (не проверяется без enforce_expiry)
	LastInitReference     string             `json:"last_init_reference,omitempty"`     // Референс транзакции, активировавшей подписку
	Plan                  string             `json:"plan,omitempty"`
	UpdatedAt             time.Time          `json:"updated_at,omitempty"`
}

// FreeSubscriber возвращает представление пользователя без записи.
func FreeSubscriber(userID string) Subscriber {
	return Subscriber{
		UserID:             userID,
		SubscriptionStatus: StatusFree,
	}
}

// IsActive сообщает, активна ли подписка. Если expiry включён и срок истёк,
// подписка считается неактивной.
func (s Subscriber) IsActive(now time.Time, enforceExpiry bool) bool {
	if s.SubscriptionStatus != StatusActive {
		return false
	}
	if enforceExpiry && s.SubscriptionExpiresAt != nil && !now.Before(*s.SubscriptionExpiresAt) {
		return false
	}
	return true
}
