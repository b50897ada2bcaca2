// Package verify реализует callback, на который платёжный шлюз возвращает браузер
// после оплаты. Handler проверяет транзакцию у шлюза и отдаёт HTML-страницу,
// которая сообщает результат встроенному браузеру приложения.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
	"github.com/magabrotheeeer/checkout-bridge/internal/models"
	checkoutsvc "github.com/magabrotheeeer/checkout-bridge/internal/services/checkout"
)

// Service описывает бизнес-логику проверки транзакции.
type Service interface {
	Verify(ctx context.Context, req checkoutsvc.VerifyRequest) (*checkoutsvc.VerifyResult, error)
}

// Renderer рендерит страницы результата оплаты.
type Renderer interface {
	Success(sub models.Subscriber) (string, error)
	Failure(userID, reason string) (string, error)
}

// Handler обрабатывает GET /pay/verify.
type Handler struct {
	log      *slog.Logger
	service  Service
	renderer Renderer
}

// New создаёт новый Handler.
func New(log *slog.Logger, service Service, renderer Renderer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		renderer: renderer,
	}
}

// ServeHTTP godoc
// @Summary Callback после оплаты
// @Description Проверяет транзакцию у шлюза и активирует подписку. Страница отправляет
// @Description родительскому окну "payment-success" или "payment-failed".
// @Tags pay
// @Produce html
// @Param userId query string true "Идентификатор пользователя"
// @Param reference query string false "Референс транзакции"
// @Param trxref query string false "Референс транзакции (альтернативное имя)"
// @Success 200 {string} string "HTML-страница результата"
// @Failure 400 {string} string "Не хватает параметров"
// @Failure 500 {string} string "HTML-страница ошибки"
// @Router /pay/verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pay.verify.ServeHTTP"

	q := r.URL.Query()
	userID := q.Get("userId")
	reference := q.Get("reference")
	if reference == "" {
		reference = q.Get("trxref")
	}

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.UserID(userID),
		sl.Reference(reference),
	)
	log.Info("verification requested")

	// Оплата уже прошла на стороне шлюза: уход браузера не должен прерывать проверку.
	ctx := context.WithoutCancel(r.Context())

	res, err := h.service.Verify(ctx, checkoutsvc.VerifyRequest{UserID: userID, Reference: reference})
	if err != nil {
		var reqErr *checkoutsvc.RequestError
		if errors.As(err, &reqErr) {
			log.Warn("invalid verify request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.PlainText(w, r, reqErr.Message)
			return
		}
		log.Error("verification failed", sl.Err(err))
		h.failure(w, r, log, http.StatusInternalServerError, userID, failureReason(err))
		return
	}

	if !res.Success {
		log.Info("payment not successful", slog.String("gateway_response", res.GatewayResponse))
		h.failure(w, r, log, http.StatusOK, userID, res.GatewayResponse)
		return
	}

	page, err := h.renderer.Success(res.Subscriber)
	if err != nil {
		log.Error("failed to render success page", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, "Payment verified, but the result page could not be rendered.")
		return
	}
	log.Info("payment verified")
	render.HTML(w, r, page)
}

func (h *Handler) failure(w http.ResponseWriter, r *http.Request, log *slog.Logger, status int, userID, reason string) {
	page, err := h.renderer.Failure(userID, reason)
	if err != nil {
		log.Error("failed to render failure page", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, "Verification failed.")
		return
	}
	render.Status(r, status)
	render.HTML(w, r, page)
}

func failureReason(err error) string {
	var gwErr *checkoutsvc.GatewayError
	switch {
	case errors.Is(err, checkoutsvc.ErrMisconfigured):
		return "Payment gateway is not configured."
	case errors.As(err, &gwErr) && gwErr.Message != "":
		return gwErr.Message
	default:
		return "Verification failed. Please try again later."
	}
}
