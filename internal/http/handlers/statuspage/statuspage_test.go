package statuspage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/checkout-bridge/internal/http/pages"
	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Status(ctx context.Context, userID string) (models.Subscriber, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Subscriber), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestStatusPageHandler(t *testing.T) {
	exp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		contains       []string
	}{
		{
			name: "unknown user is free",
			url:  "/status-page?userId=u9",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "u9").Return(models.FreeSubscriber("u9"), nil).Once()
			},
			expectedStatus: http.StatusOK,
			contains:       []string{"<strong>Status:</strong> free", `"subscription:free"`, "u9"},
		},
		{
			name: "active user with expiry",
			url:  "/status-page?userId=u1",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "u1").Return(models.Subscriber{
					UserID:                "u1",
					SubscriptionStatus:    models.StatusActive,
					SubscriptionExpiresAt: &exp,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			contains:       []string{"<strong>Status:</strong> active", `"subscription:active"`, "Expires: 1 Jun 2025 12:00 UTC"},
		},
		{
			name: "store failure",
			url:  "/status-page?userId=u1",
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, "u1").Return(models.Subscriber{}, errors.New("redis down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			contains:       []string{"could not read subscription status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService, pages.MustNew())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
			mockService.AssertExpectations(t)
		})
	}
}
