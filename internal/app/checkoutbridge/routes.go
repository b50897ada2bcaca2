// Package checkoutbridge собирает HTTP-приложение: маршруты, middleware и зависимости.
package checkoutbridge

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации для /docs.
	_ "github.com/magabrotheeeer/checkout-bridge/docs"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/handlers/home"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/handlers/pay/checkout"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/handlers/pay/testsuccess"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/handlers/pay/verify"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/handlers/statuspage"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/handlers/subscriber/read"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/middlewarectx"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/pages"
	checkoutsvc "github.com/magabrotheeeer/checkout-bridge/internal/services/checkout"
)

// RouteDeps - зависимости обработчиков.
type RouteDeps struct {
	Service        *checkoutsvc.Service
	Pages          *pages.Pages
	Limiter        *middlewarectx.Limiter
	AllowedOrigins []string
	Metrics        http.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps RouteDeps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: deps.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}),
	)

	r.Get("/", home.New().ServeHTTP)
	r.Get("/status-page", statuspage.New(logger, deps.Service, deps.Pages).ServeHTTP)

	r.Route("/pay", func(r chi.Router) {
		r.Use(deps.Limiter.RateLimitMiddleware(logger))
		r.Get("/checkout", checkout.New(logger, deps.Service).ServeHTTP)
		r.Get("/verify", verify.New(logger, deps.Service, deps.Pages).ServeHTTP)
		r.Get("/testsuccess", testsuccess.New(logger, deps.Pages).ServeHTTP)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/subscribers/{userId}", read.New(logger, deps.Service).ServeHTTP)
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
