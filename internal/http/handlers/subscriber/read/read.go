// Package read реализует JSON-эндпоинт чтения записи подписчика.
//
// Handler извлекает userId из URL, читает запись через сервис и возвращает её
// в стандартном JSON-конверте. Отсутствие записи не ошибка: возвращается статус free.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/checkout-bridge/internal/http/response"
	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

// Service описывает бизнес-логику чтения подписчика.
type Service interface {
	Status(ctx context.Context, userID string) (models.Subscriber, error)
}

// Handler обрабатывает GET /api/v1/subscribers/{userId}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Запись подписчика
// @Tags subscribers
// @Produce json
// @Param userId path string true "Идентификатор пользователя"
// @Success 200 {object} response.Response{data=models.Subscriber}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/subscribers/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.read.ServeHTTP"

	userID := chi.URLParam(r, "userId")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.UserID(userID),
	)

	sub, err := h.service.Status(r.Context(), userID)
	if err != nil {
		log.Error("failed to read subscriber", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscriber"))
		return
	}

	log.Debug("subscriber read", slog.String("status", string(sub.SubscriptionStatus)))
	render.JSON(w, r, response.StatusOKWithData(sub))
}
