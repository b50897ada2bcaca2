package testsuccess

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/checkout-bridge/internal/http/pages"
)

type brokenRenderer struct{}

func (brokenRenderer) TestSuccess(string) (string, error) { return "", errors.New("template") }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestTestSuccessHandler(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		contains []string
	}{
		{name: "without user", url: "/pay/testsuccess", contains: []string{"Send Test Message", "payment-success"}},
		{name: "echoes user", url: "/pay/testsuccess?userId=u5", contains: []string{"User: u5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			New(newNoopLogger(), pages.MustNew()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
		})
	}
}

func TestTestSuccessHandler_RenderError(t *testing.T) {
	w := httptest.NewRecorder()
	New(newNoopLogger(), brokenRenderer{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pay/testsuccess", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
