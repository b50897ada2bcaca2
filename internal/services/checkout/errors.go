package checkout

import (
	"errors"
	"fmt"
)

// Ошибки сервиса. Транспортный слой сопоставляет их с HTTP-статусами.
var (
	// ErrInvalidRequest - не хватает или неверны входные параметры (400).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMisconfigured - на сервере не задан ключ платёжного шлюза (500).
	ErrMisconfigured = errors.New("payment gateway is not configured")
	// ErrGateway - шлюз ответил ошибкой, неожиданным ответом или недоступен (500).
	ErrGateway = errors.New("payment gateway error")
)

// GatewayError описывает неуспешный вызов шлюза. Message можно показывать пользователю,
// полная причина хранится в Err и пишется только в лог.
type GatewayError struct {
	Op      string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is позволяет проверять ошибку через errors.Is(err, ErrGateway).
func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// RequestError описывает неверный запрос. Message показывается клиенту как есть.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return ErrInvalidRequest.Error() + ": " + e.Message }

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidRequest).
func (e *RequestError) Is(target error) bool { return target == ErrInvalidRequest }

func invalidRequest(msg string) error {
	return &RequestError{Message: msg}
}
