package verify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/checkout-bridge/internal/http/pages"
	"github.com/magabrotheeeer/checkout-bridge/internal/models"
	checkoutsvc "github.com/magabrotheeeer/checkout-bridge/internal/services/checkout"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Verify(ctx context.Context, req checkoutsvc.VerifyRequest) (*checkoutsvc.VerifyResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*checkoutsvc.VerifyResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type brokenRenderer struct{}

func (brokenRenderer) Success(models.Subscriber) (string, error) { return "", errors.New("template") }
func (brokenRenderer) Failure(string, string) (string, error)   { return "", errors.New("template") }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestVerifyHandler(t *testing.T) {
	active := models.Subscriber{UserID: "u1", SubscriptionStatus: models.StatusActive}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		contains       []string
		notContains    []string
	}{
		{
			name: "success page posts payment-success",
			url:  "/pay/verify?userId=u1&reference=ref-1",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, checkoutsvc.VerifyRequest{UserID: "u1", Reference: "ref-1"}).
					Return(&checkoutsvc.VerifyResult{Success: true, Subscriber: active}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			contains:       []string{"Payment Successful!", `"payment-success"`},
			notContains:    []string{"payment-failed"},
		},
		{
			name: "trxref is accepted",
			url:  "/pay/verify?userId=u1&trxref=ref-2",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, checkoutsvc.VerifyRequest{UserID: "u1", Reference: "ref-2"}).
					Return(&checkoutsvc.VerifyResult{Success: true, Subscriber: active}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			contains:       []string{`"payment-success"`},
		},
		{
			name: "declined shows gateway response",
			url:  "/pay/verify?userId=u1&reference=ref-3",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, mock.Anything).
					Return(&checkoutsvc.VerifyResult{Subscriber: models.FreeSubscriber("u1"), GatewayResponse: "Declined"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			contains:       []string{"Payment Failed", "Declined", `"payment-failed"`},
			notContains:    []string{"payment-success"},
		},
		{
			name: "missing reference",
			url:  "/pay/verify?userId=u1",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, checkoutsvc.VerifyRequest{UserID: "u1"}).
					Return(nil, &checkoutsvc.RequestError{Message: "Missing reference or userId"}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"Missing reference or userId"},
		},
		{
			name: "gateway error renders failure page with 500",
			url:  "/pay/verify?userId=u1&reference=ref-4",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, mock.Anything).
					Return(nil, &checkoutsvc.GatewayError{Op: "op", Err: errors.New("dial tcp: timeout")}).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			contains:       []string{"Payment Failed", "Verification failed. Please try again later.", `"payment-failed"`},
			notContains:    []string{"dial tcp"},
		},
		{
			name: "gateway message shown",
			url:  "/pay/verify?userId=u1&reference=ref-5",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, mock.Anything).
					Return(nil, &checkoutsvc.GatewayError{Op: "op", Message: "Transaction reference not found"}).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			contains:       []string{"Transaction reference not found"},
		},
		{
			name: "not configured",
			url:  "/pay/verify?userId=u1&reference=ref-6",
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, mock.Anything).Return(nil, checkoutsvc.ErrMisconfigured).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			contains:       []string{"Payment gateway is not configured."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService, pages.MustNew())

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, w.Body.String(), s)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestVerifyHandler_DetachedFromClientCancel(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Verify", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(&checkoutsvc.VerifyResult{Success: true, Subscriber: models.Subscriber{UserID: "u1", SubscriptionStatus: models.StatusActive}}, nil).Once()

	handler := New(newNoopLogger(), mockService, pages.MustNew())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/pay/verify?userId=u1&reference=ref-1", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestVerifyHandler_RenderError(t *testing.T) {
	mockService := new(MockService)
	mockService.On("Verify", mock.Anything, mock.Anything).
		Return(&checkoutsvc.VerifyResult{Success: true}, nil).Once()

	handler := New(newNoopLogger(), mockService, brokenRenderer{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pay/verify?userId=u1&reference=ref-1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "could not be rendered")
}
