// Package health reports service liveness over HTTP and the gRPC health protocol.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/response"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "inventory-management"

type Pinger interface {
	PingContext(ctx context.Context) error
}

type status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Handler answers 200 while the database responds to a ping and 503 otherwise.
func Handler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, status{Status: "unhealthy", Service: ServiceName})
			return
		}
		response.JSON(w, http.StatusOK, status{Status: "healthy", Service: ServiceName})
	}
}

// Checker mirrors database reachability into a gRPC health server.
type Checker struct {
	db       Pinger
	server   *health.Server
	interval time.Duration
	logger   logger.ZapLogger
}

func NewChecker(db Pinger, server *health.Server, interval time.Duration, log logger.ZapLogger) *Checker {
	return &Checker{db: db, server: server, interval: interval, logger: log}
}

func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.check(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *Checker) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	next := healthpb.HealthCheckResponse_SERVING
	if err := c.db.PingContext(ctx); err != nil {
		next = healthpb.HealthCheckResponse_NOT_SERVING
		c.logger.Warn("health check failed", zap.Error(err))
	}
	c.server.SetServingStatus("", next)
	c.server.SetServingStatus(ServiceName, next)
}
