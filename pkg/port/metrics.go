package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var metricsAddress = flag.String("metrics_address", "",
	"The ip:port to expose prometheus metrics on at /metrics; empty disables the endpoint.")

// shutdownTimeout bounds how long the metrics server may take to drain on exit.
const shutdownTimeout = 5 * time.Second

// newMetricsHandler serves the default prometheus registry.
func newMetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// serveMetrics serves /metrics on `ln` until ctx is cancelled.
func serveMetrics(ctx context.Context, ln net.Listener) error {
	server := &http.Server{Handler: newMetricsHandler()}
	serverErrSignal := make(chan error, 1)
	go func() {
		serverErrSignal <- server.Serve(ln)
	}()
	slog.Info("Serving metrics.", "address", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down metrics server: %w", err)
		}
		return nil
	case err := <-serverErrSignal:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server stopped unexpectedly: %w", err)
	}
}

// RunMetricsServer exposes prometheus metrics on --metrics_address. It returns immediately when the flag is empty.
func RunMetricsServer(ctx context.Context) error {
	if *metricsAddress == "" {
		return nil
	}
	ln, err := net.Listen("tcp", *metricsAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", *metricsAddress, err)
	}
	return serveMetrics(ctx, ln)
}
