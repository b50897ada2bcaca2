package paystack

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSecretKey возвращается до любого сетевого вызова, если ключ не задан.
	ErrMissingSecretKey = errors.New("paystack secret key is not configured")
	// ErrTransport оборачивает сетевые ошибки: таймауты, обрыв соединения, DNS.
	ErrTransport = errors.New("paystack transport failure")
)

// APIError - ответ шлюза, который не удалось принять: не-2xx статус или неразборчивое тело.
type APIError struct {
	StatusCode int
	Message    string // сообщение шлюза, безопасное для показа пользователю
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("paystack: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("paystack: status %d: %s", e.StatusCode, e.Message)
}
