package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tphakala/applog/internal/logger"
	metricspkg "github.com/tphakala/applog/internal/observability/metrics"
)

// readHeaderTimeout bounds slow clients of the metrics endpoint.
const readHeaderTimeout = 10 * time.Second

// Endpoint serves the Prometheus /metrics handler over HTTP.
type Endpoint struct {
	server        *http.Server
	listener      net.Listener
	listenAddress string
	metrics       *Metrics
	log           logger.Logger
}

// NewEndpoint creates a new metrics Endpoint listening on listenAddress.
// It does not bind the address until Start is called.
func NewEndpoint(listenAddress string, metrics *Metrics, log logger.Logger) (*Endpoint, error) {
	if listenAddress == "" {
		return nil, fmt.Errorf("metrics listen address is empty")
	}
	if metrics == nil {
		return nil, fmt.Errorf("metrics are not initialized")
	}

	return &Endpoint{
		listenAddress: listenAddress,
		metrics:       metrics,
		log:           log.Module("metrics"),
	}, nil
}

// Start binds the listen address and serves requests in a goroutine tracked by
// wg until ctx is canceled, then shuts the server down gracefully.
func (e *Endpoint) Start(ctx context.Context, wg *sync.WaitGroup) error {
	ln, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", e.listenAddress, err)
	}
	e.listener = ln

	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	wg.Go(func() {
		e.log.Info("metrics endpoint starting", logger.String("address", ln.Addr().String()))
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("metrics HTTP server error", logger.Err(err))
		}
	})

	wg.Go(func() {
		e.gracefulShutdown(ctx)
	})

	return nil
}

// Addr returns the bound address, or nil before Start.
func (e *Endpoint) Addr() net.Addr {
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// gracefulShutdown waits for ctx to be done and shuts down the server gracefully.
func (e *Endpoint) gracefulShutdown(ctx context.Context) {
	<-ctx.Done()
	e.log.Info("stopping metrics endpoint")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(shutdownCtx); err != nil {
		e.log.Error("metrics server shutdown error", logger.Err(err))
	}
}

// GetMetrics returns the Metrics instance associated with this Endpoint.
func (e *Endpoint) GetMetrics() *Metrics {
	return e.metrics
}
