package checkoutbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/checkout-bridge/internal/cache"
	"github.com/magabrotheeeer/checkout-bridge/internal/config"
	"github.com/magabrotheeeer/checkout-bridge/internal/grpc/server"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/middlewarectx"
	"github.com/magabrotheeeer/checkout-bridge/internal/http/pages"
	"github.com/magabrotheeeer/checkout-bridge/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
	"github.com/magabrotheeeer/checkout-bridge/internal/metrics"
	"github.com/magabrotheeeer/checkout-bridge/internal/migrations"
	"github.com/magabrotheeeer/checkout-bridge/internal/paystack"
	"github.com/magabrotheeeer/checkout-bridge/internal/plans"
	checkoutsvc "github.com/magabrotheeeer/checkout-bridge/internal/services/checkout"
	"github.com/magabrotheeeer/checkout-bridge/internal/storage"
	"github.com/magabrotheeeer/checkout-bridge/internal/storage/memory"
)

const shutdownTimeout = 15 * time.Second

// App - собранное приложение: HTTP-сервер и опциональные gRPC health и брокер.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	limiter *middlewarectx.Limiter
	health  *server.HealthServer
	grpcLis net.Listener
	closers []func() error
}

// New создаёт приложение по конфигу. Внешние зависимости подключаются только если
// они включены в конфиге; при ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	gateway := paystack.NewClient(cfg.SecretKey, cfg.BaseURL, cfg.GatewayTimeout, logger, paystack.WithObserver(m))
	if !gateway.HasCredentials() {
		logger.Warn("PAYSTACK_SECRET_KEY is not set: checkout and verify will fail")
	}

	store, pinger, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []checkoutsvc.Option{checkoutsvc.WithRecorder(m)}
	if cfg.RabbitMQURL != "" {
		pub, err := a.openPublisher(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, checkoutsvc.WithPublisher(pub))
	}

	svc := checkoutsvc.New(gateway, store, checkoutsvc.Config{
		CallbackBaseURL: cfg.CallbackBaseURL(),
		Currency:        cfg.Currency,
		SubscriptionTTL: cfg.TTL,
		EnforceExpiry:   cfg.EnforceExpiry,
		Plans:           plans.Default,
	}, logger, opts...)

	renderer, err := pages.New()
	if err != nil {
		return nil, err
	}

	a.limiter = middlewarectx.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteDeps{
		Service:        svc,
		Pages:          renderer,
		Limiter:        a.limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	if cfg.HealthAddress != "" {
		lis, err := net.Listen("tcp", cfg.HealthAddress)
		if err != nil {
			return nil, fmt.Errorf("app.New: grpc listen: %w", err)
		}
		checks := map[string]server.Pinger{}
		if pinger != nil {
			checks["store"] = pinger
		}
		a.grpcLis = lis
		a.health = server.NewHealthServer(logger, checks)
	}

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	logger.Info("app initialized",
		slog.String("storage", cfg.Driver),
		slog.String("callback_base_url", cfg.CallbackBaseURL()),
		slog.Bool("events", cfg.RabbitMQURL != ""),
	)
	return a, nil
}

// Handler возвращает корневой HTTP-обработчик.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (checkoutsvc.Store, server.Pinger, error) {
	switch cfg.Driver {
	case config.StorageRedis:
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, c.Close)
		return c, c, nil
	case config.StoragePostgres:
		db, err := storage.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
			return nil, nil, err
		}
		if err := storage.CheckDatabaseReady(ctx, db); err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		a.logger.Warn("using in-memory subscriber store: records are lost on restart")
		return memory.New(), nil, nil
	}
}

func (a *App) openPublisher(cfg *config.Config) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQExchange, rabbitmq.GetSubscriptionQueues())
	if err != nil {
		return nil, err
	}
	go a.watchBroker(conn)

	pub := rabbitmq.NewPublisher(ch, cfg.RabbitMQExchange)
	a.closers = append(a.closers, pub.Close)
	return pub, nil
}

func (a *App) watchBroker(conn *amqp.Connection) {
	if err, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1)); ok && err != nil {
		a.logger.Error("rabbitmq connection closed", slog.String("reason", err.Reason))
	}
}

// Run запускает серверы и блокируется до отмены ctx или ошибки сервера,
// затем корректно останавливает их.
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.limiter.Run(bgCtx)
	}()

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	if a.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.health.Watch(bgCtx)
		}()
		go func() {
			if err := a.health.Serve(a.grpcLis); err != nil {
				errCh <- fmt.Errorf("grpc health server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	if a.health != nil {
		a.health.Stop()
	}

	cancel()
	wg.Wait()
	a.close()
	return runErr
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
