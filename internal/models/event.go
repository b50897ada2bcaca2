package models

import "time"

// SubscriptionActivated публикуется в брокер после успешной активации подписки.
type SubscriptionActivated struct {
	UserID      string    `json:"user_id"`
	Plan        string    `json:"plan,omitempty"`
	Reference   string    `json:"reference"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	ActivatedAt time.Time `json:"activated_at"`
}
