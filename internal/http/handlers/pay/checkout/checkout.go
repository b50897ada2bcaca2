// Package checkout реализует HTTP-обработчик запуска оплаты подписки.
//
// Handler валидирует query-параметры email, plan и userId, создаёт транзакцию
// через сервис и перенаправляет браузер на hosted checkout шлюза.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/checkout-bridge/internal/http/response"
	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
	checkoutsvc "github.com/magabrotheeeer/checkout-bridge/internal/services/checkout"
)

// Service описывает бизнес-логику запуска оплаты.
type Service interface {
	StartCheckout(ctx context.Context, req checkoutsvc.CheckoutRequest) (*checkoutsvc.Session, error)
}

// Handler обрабатывает GET /pay/checkout.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type request struct {
	Email  string `query:"email" validate:"required,email"`
	Plan   string `query:"plan" validate:"required,max=64"`
	UserID string `query:"userId" validate:"required,max=256"`
}

// New создаёт новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("query")
	})
	return &Handler{
		log:      log,
		service:  service,
		validate: v,
	}
}

// ServeHTTP godoc
// @Summary Запуск оплаты подписки
// @Description Создаёт транзакцию в платёжном шлюзе и перенаправляет на страницу оплаты.
// @Tags pay
// @Produce plain
// @Param email query string true "Email плательщика"
// @Param plan query string true "Тариф: monthly или 6month"
// @Param userId query string true "Идентификатор пользователя"
// @Success 302 {string} string "Redirect на authorization_url"
// @Failure 400 {string} string "Неверные параметры"
// @Failure 500 {string} string "Ошибка шлюза или конфигурации"
// @Router /pay/checkout [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pay.checkout.ServeHTTP"

	q := r.URL.Query()
	req := request{
		Email:  strings.TrimSpace(q.Get("email")),
		Plan:   strings.TrimSpace(q.Get("plan")),
		UserID: strings.TrimSpace(q.Get("userId")),
	}

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.UserID(req.UserID),
	)
	log.Info("checkout requested", slog.String("plan", req.Plan))

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		msg := "Missing email, plan, or userId"
		if errors.As(err, &verrs) && !hasRequiredFailure(verrs) {
			msg = response.ValidationMessage(verrs)
		}
		log.Warn("invalid checkout request", sl.Err(err))
		writeText(w, r, http.StatusBadRequest, msg)
		return
	}

	session, err := h.service.StartCheckout(r.Context(), checkoutsvc.CheckoutRequest{
		Email:  req.Email,
		Plan:   req.Plan,
		UserID: req.UserID,
	})
	if err != nil {
		status, msg := mapError(err)
		log.Error("failed to start checkout", sl.Err(err))
		writeText(w, r, status, msg)
		return
	}

	log.Info("redirecting to checkout", sl.Reference(session.Reference))
	http.Redirect(w, r, session.AuthorizationURL, http.StatusFound)
}

func hasRequiredFailure(errs validator.ValidationErrors) bool {
	for _, e := range errs {
		if e.ActualTag() == "required" {
			return true
		}
	}
	return false
}

func mapError(err error) (int, string) {
	var reqErr *checkoutsvc.RequestError
	var gwErr *checkoutsvc.GatewayError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Message
	case errors.Is(err, checkoutsvc.ErrMisconfigured):
		return http.StatusInternalServerError, "Payment gateway is not configured."
	case errors.As(err, &gwErr) && gwErr.Message != "":
		return http.StatusInternalServerError, "Failed to initialize checkout: " + gwErr.Message
	default:
		return http.StatusInternalServerError, "Checkout initialization failed."
	}
}

func writeText(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.PlainText(w, r, msg)
}
