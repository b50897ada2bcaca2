// Package server реализует gRPC-сервер со стандартным сервисом grpc.health.v1.Health.
//
// Статус SERVING выставляется, пока все зависимости (хранилище подписчиков)
// отвечают на Ping; иначе NOT_SERVING.
package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/checkout-bridge/internal/lib/sl"
)

// ServiceName - имя сервиса в health-проверках.
const ServiceName = "checkoutbridge.CheckoutBridge"

// Pinger - зависимость, доступность которой влияет на статус сервиса.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer обслуживает grpc.health.v1.Health.
type HealthServer struct {
	srv      *grpc.Server
	health   *health.Server
	checks   map[string]Pinger
	log      *slog.Logger
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	serving bool
}

// NewHealthServer создаёт сервер. checks может быть пустым: тогда сервис всегда SERVING.
func NewHealthServer(log *slog.Logger, checks map[string]Pinger) *HealthServer {
	s := &HealthServer{
		srv:      grpc.NewServer(),
		health:   health.NewServer(),
		checks:   checks,
		log:      log,
		interval: 10 * time.Second,
		timeout:  2 * time.Second,
		serving:  true,
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve принимает соединения на lis до вызова Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("grpc health server started", slog.String("address", lis.Addr().String()))
	return s.srv.Serve(lis)
}

// Check опрашивает зависимости и обновляет статус.
func (s *HealthServer) Check(ctx context.Context) bool {
	ok := true
	for name, p := range s.checks {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			s.log.Warn("dependency is unhealthy", slog.String("dependency", name), sl.Err(err))
			ok = false
		}
	}

	s.mu.Lock()
	changed := s.serving != ok
	s.serving = ok
	s.mu.Unlock()

	if changed {
		if ok {
			s.setStatus(healthpb.HealthCheckResponse_SERVING)
		} else {
			s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		}
	}
	return ok
}

// Watch периодически вызывает Check, пока не отменён ctx.
func (s *HealthServer) Watch(ctx context.Context) {
	if len(s.checks) == 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Stop переводит статус в NOT_SERVING и останавливает сервер, дождавшись активных RPC.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func (s *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
