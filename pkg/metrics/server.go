package metrics

import (
	"context"
	"emailcount/pkg/logger"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ServerOptions configure the metrics HTTP server.
type ServerOptions struct {
	// Addr is the TCP address the server listens on, e.g. ":9090".
	Addr string
	// Path is the HTTP path at which Prometheus metrics are served.
	Path string
	// Pprof mounts net/http/pprof handlers under /debug/pprof/.
	Pprof bool
	// Gatherer is scraped on Path; nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
}

// NewServer returns an unstarted *http.Server exposing metrics.
func NewServer(opts ServerOptions) *http.Server {
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 10 * time.Second
	}

	mux := http.NewServeMux()
	mux.Handle(opts.Path, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	if opts.Pprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           withAccessLog(mux),
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
	}
}

// Serve runs srv until ctx is done, then shuts it down within shutdownTimeout.
// It returns nil after a clean shutdown.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting metrics server...", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("could not start metrics server: %w", err)
	case <-ctx.Done():
	}

	logger.Info(ctx, "stopping metrics server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not stop metrics server: %w", err)
	}

	return nil
}

// statusRecorder wraps http.ResponseWriter to capture the final HTTP status
// code written by the downstream handler.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

// WriteHeader records the status code and forwards the call to the underlying writer.
func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// withAccessLog logs every request at debug level once the handler finishes.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Debug(r.Context(), "Access log",
			zap.Int("status_code", rec.status),
			zap.Float64("latency", time.Since(start).Seconds()),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("url", r.URL.String()),
			zap.String("method", r.Method),
		)
	})
}
