package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rig/internal/config"
	"rig/internal/environment"
	"rig/internal/tracing"
	"rig/pkg/logging"
)

// ShutdownTimeout bounds the shutdown of a running application.
const ShutdownTimeout = 30 * time.Second

// Application runs a builder with the ambient runtime described by a
// configuration: logging, tracing, reports, systemd readiness and the
// metrics endpoint.
type Application struct {
	cfg     config.Config
	builder *Builder
	tracer  *tracing.Provider
	boot    *Bootstrap
	metrics *http.Server
	addr    net.Addr
}

// NewApplication validates cfg, initializes logging and tracing, and applies
// cfg to b. Logs go to logOut; reports go to reportOut.
func NewApplication(cfg config.Config, b *Builder, logOut, reportOut io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logging.Init(level, logging.Format(cfg.Logging.Format), logOut)

	tracer, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize tracing")
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	b.ApplyConfig(cfg, reportOut).Tracing(tracer)
	return &Application{cfg: cfg, builder: b, tracer: tracer}, nil
}

// Bootstrap returns the bootstrap once Start has built it.
func (a *Application) Bootstrap() *Bootstrap {
	return a.boot
}

// MetricsAddr returns the address of the metrics endpoint, or nil when it
// is not served.
func (a *Application) MetricsAddr() net.Addr {
	return a.addr
}

// Start builds the bootstrap and runs it up to ApplicationRunning.
// configuration is bound in the container next to the rig configuration.
func (a *Application) Start(ctx context.Context, host *Host, configuration any, env *environment.Environment) error {
	boot, err := a.builder.Build()
	if err != nil {
		return err
	}
	a.boot = boot

	if err := boot.Initialize(ctx, host); err != nil {
		return err
	}
	if configuration == nil {
		configuration = a.cfg
	}
	if err := boot.Run(ctx, configuration, env); err != nil {
		return err
	}
	if a.cfg.Metrics.Listen != "" {
		if err := a.serveMetrics(); err != nil {
			return errors.Join(err, boot.Shutdown(ctx))
		}
	}
	return nil
}

// Run starts the application and blocks until ctx is cancelled or the
// process receives SIGINT or SIGTERM, then shuts it down.
func (a *Application) Run(ctx context.Context, host *Host, configuration any, env *environment.Environment) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, host, configuration, env); err != nil {
		a.closeTracer()
		return err
	}
	logging.Info("Bootstrap", "Application running. Press Ctrl+C to stop.")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops the metrics endpoint and, when it is running, the
// application, and flushes traces. It is safe to call after a failed Start.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		errs = append(errs, a.metrics.Shutdown(ctx))
		a.metrics = nil
	}
	if a.boot != nil && a.boot.Running() {
		errs = append(errs, a.boot.Shutdown(ctx))
	}
	errs = append(errs, a.tracer.Shutdown(ctx))
	return errors.Join(errs...)
}

func (a *Application) closeTracer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		logging.Warn("Bootstrap", "Failed to flush traces: %v", err)
	}
}

// MetricsHandler exposes the bootstrap statistics with the Go runtime and
// process collectors.
func MetricsHandler(b *Bootstrap) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	err := reg.Register(b.Stats())
	if err == nil {
		err = reg.Register(collectors.NewGoCollector())
	}
	if err == nil {
		err = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register collectors: %w", err)
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func (a *Application) serveMetrics() error {
	handler, err := MetricsHandler(a.boot)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", a.cfg.Metrics.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Metrics.Listen, err)
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, handler)
	a.metrics = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	a.addr = ln.Addr()

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Bootstrap", err, "Metrics server stopped")
		}
	}(a.metrics)
	logging.Info("Bootstrap", "Serving metrics on %s%s", ln.Addr(), a.cfg.Metrics.Path)
	return nil
}
