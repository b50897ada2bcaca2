// Package testsuccess реализует диагностическую страницу для проверки канала
// postMessage между встроенным браузером и приложением без реальной оплаты.
package testsuccess

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
)

// Renderer рендерит диагностическую страницу.
type Renderer interface {
	TestSuccess(userID string) (string, error)
}

// Handler обрабатывает GET /pay/testsuccess.
type Handler struct {
	log      *slog.Logger
	renderer Renderer
}

// New создаёт новый Handler.
func New(log *slog.Logger, renderer Renderer) *Handler {
	return &Handler{log: log, renderer: renderer}
}

// ServeHTTP godoc
// @Summary Диагностическая страница
// @Description Кнопка на странице отправляет родительскому окну "payment-success".
// @Tags pay
// @Produce html
// @Param userId query string false "Идентификатор пользователя"
// @Success 200 {string} string "HTML-страница"
// @Router /pay/testsuccess [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pay.testsuccess.ServeHTTP"

	page, err := h.renderer.TestSuccess(r.URL.Query().Get("userId"))
	if err != nil {
		h.log.Error("failed to render test page",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, "could not render test page")
		return
	}
	render.HTML(w, r, page)
}
