// Package pages рендерит HTML-страницы, которые открываются во встроенном браузере
// мобильного приложения и сообщают результат родительскому окну через postMessage.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

// Токены, которые страницы отправляют родительскому окну.
const (
	TokenPaymentSuccess = "payment-success"
	TokenPaymentFailed  = "payment-failed"
)

const expiryLayout = "2 Jan 2006 15:04 MST"

//go:embed templates/*.html
var templatesFS embed.FS

// SubscriptionToken возвращает токен страницы статуса: "subscription:<status>".
func SubscriptionToken(status models.SubscriptionStatus) string {
	return "subscription:" + string(status)
}

type view struct {
	Title     string
	Token     string
	AutoPost  bool
	UserID    string
	Status    string
	ExpiresAt string
	Reason    string
}

// Pages хранит разобранные шаблоны страниц.
type Pages struct {
	success     *template.Template
	failure     *template.Template
	status      *template.Template
	testSuccess *template.Template
}

// New разбирает встроенные шаблоны.
func New() (*Pages, error) {
	const op = "pages.New"

	parse := func(name string) (*template.Template, error) {
		return template.New(name).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
	}

	var p Pages
	var err error
	if p.success, err = parse("success.html"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.failure, err = parse("failure.html"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.status, err = parse("status.html"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.testSuccess, err = parse("testsuccess.html"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// MustNew как New, но паникует при ошибке. Шаблоны встроены в бинарник,
// поэтому ошибка означает дефект сборки.
func MustNew() *Pages {
	p, err := New()
	if err != nil {
		panic(err)
	}
	return p
}

// Success - страница успешной оплаты, отправляет "payment-success".
func (p *Pages) Success(sub models.Subscriber) (string, error) {
	return execute(p.success, view{
		Title:     "Payment Successful",
		Token:     TokenPaymentSuccess,
		AutoPost:  true,
		UserID:    sub.UserID,
		Status:    string(sub.SubscriptionStatus),
		ExpiresAt: formatExpiry(sub.SubscriptionExpiresAt),
	})
}

// Failure - страница неуспешной оплаты, отправляет "payment-failed" и показывает причину.
func (p *Pages) Failure(userID, reason string) (string, error) {
	return execute(p.failure, view{
		Title:    "Payment Failed",
		Token:    TokenPaymentFailed,
		AutoPost: true,
		UserID:   userID,
		Reason:   reason,
	})
}

// Status - страница статуса подписки, отправляет "subscription:<status>".
func (p *Pages) Status(sub models.Subscriber) (string, error) {
	return execute(p.status, view{
		Title:     "Subscription status",
		Token:     SubscriptionToken(sub.SubscriptionStatus),
		AutoPost:  true,
		UserID:    sub.UserID,
		Status:    string(sub.SubscriptionStatus),
		ExpiresAt: formatExpiry(sub.SubscriptionExpiresAt),
	})
}

// TestSuccess - диагностическая страница с кнопкой, отправляющей "payment-success".
func (p *Pages) TestSuccess(userID string) (string, error) {
	return execute(p.testSuccess, view{
		Title:  "Test success page",
		Token:  TokenPaymentSuccess,
		UserID: userID,
	})
}

func execute(t *template.Template, v view) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return "", fmt.Errorf("pages.execute %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(expiryLayout)
}
