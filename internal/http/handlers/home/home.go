// Package home реализует проверку живости сервиса на корневом пути.
package home

import (
	"net/http"

	"github.com/go-chi/render"
)

// Message - текст ответа на GET /.
const Message = "Checkout bridge is running"

// Handler отвечает простым текстом, что сервис запущен.
type Handler struct{}

// New создаёт новый Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags service
// @Produce plain
// @Success 200 {string} string "Checkout bridge is running"
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, Message)
}
