package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripFunc позволяет подменить транспорт http.Client.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type recordedCall struct {
	operation string
	outcome   string
}

type fakeObserver struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (o *fakeObserver) ObserveGatewayCall(operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, recordedCall{operation: operation, outcome: outcome})
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestClient_InitializeTransaction(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created",
			"data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer srv.Close()

	obs := &fakeObserver{}
	client := NewClient("sk_test_abc", srv.URL, time.Second, newNoopLogger(), WithObserver(obs))

	resp, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:       "a@b.com",
		Amount:      800000,
		Reference:   "ref-1",
		CallbackURL: "https://bridge.example/pay/verify?userId=u1",
		Metadata:    Metadata{UserID: "u1", Plan: "monthly"},
	})
	require.NoError(t, err)

	assert.True(t, resp.Status)
	assert.Equal(t, "https://checkout.paystack.com/abc", resp.Data.AuthorizationURL)
	assert.Equal(t, "ref-1", resp.Data.Reference)

	assert.Equal(t, "a@b.com", gotBody["email"])
	assert.EqualValues(t, 800000, gotBody["amount"])
	assert.Equal(t, "https://bridge.example/pay/verify?userId=u1", gotBody["callback_url"])
	assert.NotContains(t, gotBody, "currency")
	assert.Equal(t, map[string]any{"userId": "u1", "plan": "monthly"}, gotBody["metadata"])

	require.Len(t, obs.calls, 1)
	assert.Equal(t, recordedCall{operation: "paystack.InitializeTransaction", outcome: "ok"}, obs.calls[0])
}

func TestClient_InitializeTransaction_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	obs := &fakeObserver{}
	client := NewClient("sk_bad", srv.URL, time.Second, newNoopLogger(), WithObserver(obs))

	resp, err := client.InitializeTransaction(context.Background(), InitializeRequest{Email: "a@b.com", Amount: 1})
	require.Error(t, err)
	assert.Nil(t, resp)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid key", apiErr.Message)
	assert.NotErrorIs(t, err, ErrTransport)

	require.Len(t, obs.calls, 1)
	assert.Equal(t, "error", obs.calls[0].outcome)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway down</html>`))
	}))
	defer srv.Close()

	client := NewClient("sk_test", srv.URL, time.Second, newNoopLogger())

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "malformed gateway response", apiErr.Message)
}

func TestClient_TransportError(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	client := NewClient("sk_test", "https://api.paystack.test", time.Second, newNoopLogger(), WithHTTPClient(hc))

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient("sk_test", srv.URL, 50*time.Millisecond, newNoopLogger())

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_MissingSecretKey(t *testing.T) {
	called := false
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("must not be called")
	})}
	client := NewClient("", "", time.Second, newNoopLogger(), WithHTTPClient(hc))

	assert.False(t, client.HasCredentials())
	_, err := client.InitializeTransaction(context.Background(), InitializeRequest{})
	assert.ErrorIs(t, err, ErrMissingSecretKey)
	_, err = client.VerifyTransaction(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrMissingSecretKey)
	assert.False(t, called)
}

func TestClient_VerifyTransaction(t *testing.T) {
	tests := []struct {
		name         string
		reference    string
		wantPath     string
		body         string
		wantStatus   string
		wantMetadata Metadata
	}{
		{
			name:         "success with metadata object",
			reference:    "ref-1",
			wantPath:     "/transaction/verify/ref-1",
			body:         `{"status":true,"message":"Verification successful","data":{"status":"success","reference":"ref-1","amount":800000,"currency":"NGN","gateway_response":"Successful","metadata":{"userId":"u1","plan":"monthly"}}}`,
			wantStatus:   TransactionSuccess,
			wantMetadata: Metadata{UserID: "u1", Plan: "monthly"},
		},
		{
			name:       "failed with empty string metadata",
			reference:  "ref-2",
			wantPath:   "/transaction/verify/ref-2",
			body:       `{"status":true,"message":"Verification successful","data":{"status":"failed","reference":"ref-2","gateway_response":"Declined","metadata":""}}`,
			wantStatus: TransactionFailed,
		},
		{
			name:       "reference is path-escaped",
			reference:  "ref/3",
			wantPath:   "/transaction/verify/ref%2F3",
			body:       `{"status":true,"data":{"status":"abandoned","metadata":null}}`,
			wantStatus: TransactionAbandoned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.EscapedPath())
				assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("sk_test", srv.URL+"/", time.Second, newNoopLogger())

			resp, err := client.VerifyTransaction(context.Background(), tt.reference)
			require.NoError(t, err)
			assert.True(t, resp.Status)
			assert.Equal(t, tt.wantStatus, resp.Data.Status)
			assert.Equal(t, tt.wantMetadata, resp.Metadata())
		})
	}
}
