// Package paystack реализует HTTP-клиент платёжного шлюза Paystack:
// инициализацию транзакции и её проверку по референсу.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL - адрес публичного API Paystack.
const DefaultBaseURL = "https://api.paystack.co"

const maxResponseBody = 1 << 20

// Observer получает длительность и исход каждого вызова шлюза (для метрик).
type Observer interface {
	ObserveGatewayCall(operation, outcome string, d time.Duration)
}

// Option настраивает Client.
type Option func(*Client)

// WithObserver подключает наблюдателя за вызовами шлюза.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithHTTPClient заменяет http.Client (используется в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client - клиент Paystack. Все вызовы ограничены таймаутом http.Client.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
	log        *slog.Logger
	observer   Observer
}

// NewClient создаёт новый клиент Paystack.
func NewClient(secretKey, apiURL string, timeout time.Duration, log *slog.Logger, opts ...Option) *Client {
	if apiURL == "" {
		apiURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		secretKey:  secretKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials сообщает, задан ли секретный ключ.
func (c *Client) HasCredentials() bool {
	return c.secretKey != ""
}

// InitializeTransaction создаёт транзакцию и возвращает ссылку на hosted checkout.
func (c *Client) InitializeTransaction(ctx context.Context, reqParams InitializeRequest) (*InitializeResponse, error) {
	const op = "paystack.InitializeTransaction"

	var resp InitializeResponse
	if err := c.call(ctx, op, http.MethodPost, "/transaction/initialize", reqParams, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyTransaction запрашивает у шлюза итоговый статус транзакции.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResponse, error) {
	const op = "paystack.VerifyTransaction"

	var resp VerifyResponse
	if err := c.call(ctx, op, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) call(ctx context.Context, op, method, path string, body, out any) (err error) {
	if !c.HasCredentials() {
		return fmt.Errorf("%s: %w", op, ErrMissingSecretKey)
	}

	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		if c.observer != nil {
			c.observer.ObserveGatewayCall(op, outcome, time.Since(start))
		}
	}()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s: %w: read body: %w", op, ErrTransport, err)
	}

	c.log.Debug("paystack response",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		return fmt.Errorf("%s: %w", op, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message})
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", op, &APIError{StatusCode: resp.StatusCode, Message: "malformed gateway response"})
	}
	return nil
}
