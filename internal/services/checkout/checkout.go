// Package checkout содержит бизнес-логику оплаты подписки через hosted checkout шлюза:
// создание транзакции, проверку callback-а и чтение статуса подписчика.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
	"github.com/magabrotheeeer/checkout-bridge/internal/models"
	"github.com/magabrotheeeer/checkout-bridge/internal/paystack"
	"github.com/magabrotheeeer/checkout-bridge/internal/plans"
)

const msgPaymentExpired = "This payment has already expired."

// Gateway определяет операции платёжного шлюза, нужные сервису.
type Gateway interface {
	HasCredentials() bool
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
}

// Store хранит записи подписчиков по идентификатору пользователя.
type Store interface {
	// Get возвращает запись и признак её наличия.
	Get(ctx context.Context, userID string) (models.Subscriber, bool, error)
	// Put создаёт или целиком перезаписывает запись.
	Put(ctx context.Context, sub models.Subscriber) error
}

// Publisher публикует событие активации подписки.
type Publisher interface {
	PublishActivated(ctx context.Context, evt models.SubscriptionActivated) error
}

// Recorder получает исходы операций (метрики).
type Recorder interface {
	CheckoutResult(result string)
	VerifyResult(result string)
}

// Config - параметры сервиса.
type Config struct {
	CallbackBaseURL string
	Currency        string
	SubscriptionTTL time.Duration
	EnforceExpiry   bool
	Plans           plans.Catalog
}

// CheckoutRequest - параметры запуска оплаты.
type CheckoutRequest struct {
	Email  string
	Plan   string
	UserID string
}

// Session - созданная в шлюзе транзакция.
type Session struct {
	AuthorizationURL string
	Reference        string
	Plan             string
	Amount           int64
}

// VerifyRequest - параметры callback-а от шлюза.
type VerifyRequest struct {
	UserID    string
	Reference string
}

// VerifyResult - итог проверки транзакции.
type VerifyResult struct {
	Success         bool
	Subscriber      models.Subscriber
	GatewayResponse string // текст отказа от шлюза, если Success == false
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher подключает публикацию событий активации.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithRecorder подключает запись метрик.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithReferenceGenerator подменяет генератор референсов транзакций.
func WithReferenceGenerator(gen func() string) Option {
	return func(s *Service) { s.newReference = gen }
}

// Service реализует сценарии checkout, verify и status.
type Service struct {
	gateway      Gateway
	store        Store
	publisher    Publisher
	recorder     Recorder
	cfg          Config
	log          *slog.Logger
	now          func() time.Time
	newReference func() string
}

// New создаёт новый экземпляр Service.
func New(gateway Gateway, store Store, cfg Config, log *slog.Logger, opts ...Option) *Service {
	if cfg.Plans == nil {
		cfg.Plans = plans.Default
	}
	if cfg.SubscriptionTTL <= 0 {
		cfg.SubscriptionTTL = 30 * 24 * time.Hour
	}
	cfg.CallbackBaseURL = strings.TrimRight(cfg.CallbackBaseURL, "/")

	s := &Service{
		gateway:      gateway,
		store:        store,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
		newReference: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartCheckout создаёт транзакцию в шлюзе и возвращает ссылку на hosted checkout.
// Состояние подписчика на этом шаге не меняется.
func (s *Service) StartCheckout(ctx context.Context, req CheckoutRequest) (*Session, error) {
	const op = "services.checkout.StartCheckout"
	log := s.log.With(slog.String("op", op), sl.UserID(req.UserID))

	if req.Email == "" || req.Plan == "" || req.UserID == "" {
		s.recordCheckout("invalid_request")
		return nil, invalidRequest("Missing email, plan, or userId")
	}

	plan, amount, ok := s.cfg.Plans.Lookup(req.Plan)
	if !ok {
		s.recordCheckout("invalid_request")
		return nil, invalidRequest(fmt.Sprintf("Unknown plan: %s", req.Plan))
	}

	if !s.gateway.HasCredentials() {
		log.Error("payment gateway secret key is not set")
		s.recordCheckout("misconfigured")
		return nil, ErrMisconfigured
	}

	reference := s.newReference()
	initReq := paystack.InitializeRequest{
		Email:       req.Email,
		Amount:      amount,
		Currency:    s.cfg.Currency,
		Reference:   reference,
		CallbackURL: s.callbackURL(req.UserID),
		Metadata:    paystack.Metadata{UserID: req.UserID, Plan: plan},
	}

	log.Info("initializing transaction", slog.String("plan", plan), slog.Int64("amount", amount), sl.Reference(reference))
	resp, err := s.gateway.InitializeTransaction(ctx, initReq)
	if err != nil {
		log.Error("failed to initialize transaction", sl.Err(err))
		s.recordCheckout("gateway_error")
		return nil, gatewayError(op, err)
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		log.Error("unexpected initialize response", slog.Bool("status", resp.Status), slog.String("message", resp.Message))
		s.recordCheckout("gateway_error")
		return nil, &GatewayError{Op: op, Message: resp.Message}
	}

	if resp.Data.Reference != "" {
		reference = resp.Data.Reference
	}
	s.recordCheckout("redirected")
	return &Session{
		AuthorizationURL: resp.Data.AuthorizationURL,
		Reference:        reference,
		Plan:             plan,
		Amount:           amount,
	}, nil
}

// Verify проверяет транзакцию в шлюзе и активирует подписку только при статусе success.
// Повторная проверка референса, который уже активировал запись, возвращает запись без изменений.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	const op = "services.checkout.Verify"
	log := s.log.With(slog.String("op", op), sl.UserID(req.UserID), sl.Reference(req.Reference))

	if req.UserID == "" || req.Reference == "" {
		s.recordVerify("invalid_request")
		return nil, invalidRequest("Missing reference or userId")
	}

	existing, found, err := s.store.Get(ctx, req.UserID)
	if err != nil {
		log.Warn("failed to read subscriber before verification", sl.Err(err))
	} else if found && existing.SubscriptionStatus == models.StatusActive && existing.LastInitReference == req.Reference {
		log.Info("reference already applied")
		return s.alreadyApplied(log, existing, req.UserID), nil
	}

	if !s.gateway.HasCredentials() {
		log.Error("payment gateway secret key is not set")
		s.recordVerify("misconfigured")
		return nil, ErrMisconfigured
	}

	resp, err := s.gateway.VerifyTransaction(ctx, req.Reference)
	if err != nil {
		log.Error("failed to verify transaction", sl.Err(err))
		s.recordVerify("gateway_error")
		return nil, gatewayError(op, err)
	}
	if !resp.Status {
		log.Error("gateway rejected verification", slog.String("message", resp.Message))
		s.recordVerify("gateway_error")
		return nil, &GatewayError{Op: op, Message: resp.Message}
	}

	if resp.Data.Status != paystack.TransactionSuccess {
		log.Info("transaction not successful",
			slog.String("status", resp.Data.Status),
			slog.String("gateway_response", resp.Data.GatewayResponse))
		s.recordVerify("declined")
		return &VerifyResult{
			Subscriber:      s.view(existing, found, req.UserID),
			GatewayResponse: resp.Data.GatewayResponse,
		}, nil
	}

	md := resp.Metadata()
	if md.UserID != "" && md.UserID != req.UserID {
		log.Warn("transaction belongs to another user", slog.String("metadata_user_id", md.UserID))
		s.recordVerify("owner_mismatch")
		return &VerifyResult{
			Subscriber:      s.view(existing, found, req.UserID),
			GatewayResponse: "This transaction does not belong to this account.",
		}, nil
	}

	// Срок считается от момента оплаты, а не от проверки: повторная проверка
	// старой транзакции не продлевает подписку.
	now := s.now().UTC()
	paidAt := now
	if resp.Data.PaidAt != nil && !resp.Data.PaidAt.IsZero() {
		paidAt = resp.Data.PaidAt.UTC()
	}
	expiresAt := paidAt.Add(s.cfg.SubscriptionTTL)

	if found && existing.SubscriptionStatus == models.StatusActive &&
		existing.SubscriptionExpiresAt != nil && !expiresAt.After(*existing.SubscriptionExpiresAt) {
		log.Info("transaction does not extend current subscription", slog.Time("paid_at", paidAt))
		return s.alreadyApplied(log, existing, req.UserID), nil
	}
	if s.cfg.EnforceExpiry && !now.Before(expiresAt) {
		log.Info("paid period already over", slog.Time("paid_at", paidAt))
		s.recordVerify("expired")
		return &VerifyResult{
			Subscriber:      s.view(existing, found, req.UserID),
			GatewayResponse: msgPaymentExpired,
		}, nil
	}

	sub := models.Subscriber{
		UserID:                req.UserID,
		SubscriptionStatus:    models.StatusActive,
		SubscriptionExpiresAt: &expiresAt,
		LastInitReference:     req.Reference,
		Plan:                  plans.Normalize(md.Plan),
		UpdatedAt:             now,
	}
	if err := s.store.Put(ctx, sub); err != nil {
		log.Error("failed to save subscriber", sl.Err(err))
		s.recordVerify("store_error")
		return nil, fmt.Errorf("%s: save subscriber: %w", op, err)
	}

	log.Info("subscription activated", slog.Time("expires_at", expiresAt))
	s.recordVerify("activated")
	s.publishActivated(ctx, log, sub, resp)

	return &VerifyResult{Success: true, Subscriber: sub}, nil
}

// Status возвращает запись подписчика; при отсутствии записи - статус free.
func (s *Service) Status(ctx context.Context, userID string) (models.Subscriber, error) {
	const op = "services.checkout.Status"

	if userID == "" {
		return models.FreeSubscriber(userID), nil
	}
	sub, found, err := s.store.Get(ctx, userID)
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.view(sub, found, userID), nil
}

// alreadyApplied возвращает уже сохранённую запись без записи в хранилище.
// Успех только если подписка по правилам чтения всё ещё активна.
func (s *Service) alreadyApplied(log *slog.Logger, existing models.Subscriber, userID string) *VerifyResult {
	sub := s.view(existing, true, userID)
	if sub.SubscriptionStatus != models.StatusActive {
		log.Info("subscription already expired")
		s.recordVerify("expired")
		return &VerifyResult{Subscriber: sub, GatewayResponse: msgPaymentExpired}
	}
	s.recordVerify("already_active")
	return &VerifyResult{Success: true, Subscriber: sub}
}

// view применяет правила чтения: нет записи - free; при enforce_expiry истёкшая подписка - free.
func (s *Service) view(sub models.Subscriber, found bool, userID string) models.Subscriber {
	if !found {
		return models.FreeSubscriber(userID)
	}
	if sub.SubscriptionStatus == models.StatusActive && !sub.IsActive(s.now(), s.cfg.EnforceExpiry) {
		sub.SubscriptionStatus = models.StatusFree
	}
	return sub
}

func (s *Service) callbackURL(userID string) string {
	return s.cfg.CallbackBaseURL + "/pay/verify?userId=" + url.QueryEscape(userID)
}

func (s *Service) publishActivated(ctx context.Context, log *slog.Logger, sub models.Subscriber, resp *paystack.VerifyResponse) {
	if s.publisher == nil {
		return
	}
	evt := models.SubscriptionActivated{
		UserID:      sub.UserID,
		Plan:        sub.Plan,
		Reference:   sub.LastInitReference,
		Amount:      resp.Data.Amount,
		Currency:    resp.Data.Currency,
		ExpiresAt:   *sub.SubscriptionExpiresAt,
		ActivatedAt: sub.UpdatedAt,
	}
	if err := s.publisher.PublishActivated(ctx, evt); err != nil {
		log.Warn("failed to publish activation event", sl.Err(err))
	}
}

func (s *Service) recordCheckout(result string) {
	if s.recorder != nil {
		s.recorder.CheckoutResult(result)
	}
}

func (s *Service) recordVerify(result string) {
	if s.recorder != nil {
		s.recorder.VerifyResult(result)
	}
}

// gatewayError переводит ошибку клиента шлюза в GatewayError с безопасным сообщением.
func gatewayError(op string, err error) error {
	if errors.Is(err, paystack.ErrMissingSecretKey) {
		return ErrMisconfigured
	}
	gwErr := &GatewayError{Op: op, Err: err}
	var apiErr *paystack.APIError
	if errors.As(err, &apiErr) {
		gwErr.Message = apiErr.Message
	}
	return gwErr
}
