// Package statuspage реализует HTML-страницу статуса подписки пользователя.
package statuspage

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

// Service описывает чтение статуса подписки.
type Service interface {
	Status(ctx context.Context, userID string) (models.Subscriber, error)
}

// Renderer рендерит страницу статуса.
type Renderer interface {
	Status(sub models.Subscriber) (string, error)
}

// Handler обрабатывает GET /status-page.
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
// @Summary Страница статуса подписки
// @Description Показывает статус и отправляет родительскому окну "subscription:<status>".
// @Tags pages
// @Produce html
// @Param userId query string true "Идентификатор пользователя"
// @Success 200 {string} string "HTML-страница"
// @Router /status-page [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.statuspage.ServeHTTP"

	userID := r.URL.Query().Get("userId")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.UserID(userID),
	)

	sub, err := h.service.Status(r.Context(), userID)
	if err != nil {
		log.Error("failed to read subscription status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, "could not read subscription status")
		return
	}

	page, err := h.renderer.Status(sub)
	if err != nil {
		log.Error("failed to render status page", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, "could not render status page")
		return
	}

	log.Debug("status page rendered", slog.String("status", string(sub.SubscriptionStatus)))
	render.HTML(w, r, page)
}
