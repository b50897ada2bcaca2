package paystack

import (
	"encoding/json"
	"time"
)

// Metadata передаётся в шлюз при инициализации и возвращается при проверке транзакции.
type Metadata struct {
	UserID string `json:"userId,omitempty"`
	Plan   string `json:"plan,omitempty"`
}

// InitializeRequest - тело запроса POST /transaction/initialize.
type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // в минимальных единицах валюты
	Currency    string   `json:"currency,omitempty"`
	Reference   string   `json:"reference,omitempty"`
	CallbackURL string   `json:"callback_url"`
	Metadata    Metadata `json:"metadata"`
}

// InitializeResponse - ответ шлюза на инициализацию транзакции.
type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Статусы транзакции, которые возвращает verify.
const (
	TransactionSuccess   = "success"
	TransactionFailed    = "failed"
	TransactionAbandoned = "abandoned"
)

// VerifyResponse - ответ шлюза на GET /transaction/verify/{reference}.
type VerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string          `json:"status"`
		Reference       string          `json:"reference"`
		Amount          int64           `json:"amount"`
		Currency        string          `json:"currency"`
		GatewayResponse string          `json:"gateway_response"`
		PaidAt          *time.Time      `json:"paid_at"`
		RawMetadata     json.RawMessage `json:"metadata"`
	} `json:"data"`
}

// Metadata разбирает metadata транзакции. Шлюз возвращает пустую строку или null,
// если metadata не передавалась, поэтому ошибки разбора не считаются фатальными.
func (r *VerifyResponse) Metadata() Metadata {
	var md Metadata
	if len(r.Data.RawMetadata) == 0 {
		return md
	}
	if err := json.Unmarshal(r.Data.RawMetadata, &md); err != nil {
		return Metadata{}
	}
	return md
}
