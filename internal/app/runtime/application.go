// Package runtime owns the HTTP server and the lifecycle of the application
// behind it.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	app "github.com/R3E-Network/tasktracker/internal/app"
	"github.com/R3E-Network/tasktracker/internal/app/httpapi"
	"github.com/R3E-Network/tasktracker/internal/config"
	"github.com/R3E-Network/tasktracker/internal/logging"
	"github.com/R3E-Network/tasktracker/internal/middleware"
	"github.com/R3E-Network/tasktracker/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	api        *httpapi.API
	handler    http.Handler
	httpServer *http.Server
}

// LoggerFromConfig builds the process logger from the logging section.
func LoggerFromConfig(cfg config.LoggingConfig) *logger.Logger {
	return logger.New(logger.LoggingConfig{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		FilePrefix: cfg.FilePrefix,
	})
}

// NewApplication constructs the application, its API and the middleware
// chain described by cfg.
func NewApplication(cfg *config.Config, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = LoggerFromConfig(cfg.Logging)
	}

	core, err := app.New(app.Stores{}, log.Component("app"))
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}

	api, err := httpapi.New(core, httpapi.Options{
		AuditMaxEntries: cfg.Audit.MaxEntries,
		AuditPath:       cfg.Audit.Path,
		Metrics:         cfg.Metrics.Enabled,
	}, log.Component("httpapi"))
	if err != nil {
		return nil, fmt.Errorf("build api: %w", err)
	}

	reqLog := logging.New(log.Component("http"))
	var handler http.Handler = api
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.CleanupInterval, reqLog)
		if err := core.Attach(limiter); err != nil {
			return nil, fmt.Errorf("attach rate limiter: %w", err)
		}
		handler = limiter.Handler(handler)
	}
	if cfg.CORS.Enabled {
		handler = middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins).Handler(handler)
	}
	handler = middleware.NewTracingMiddleware(reqLog).Handler(handler)

	return &Application{
		cfg:     cfg,
		log:     log,
		app:     core,
		api:     api,
		handler: handler,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		},
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Run starts background services and the HTTP server, then blocks until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.httpServer.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.app.Start(ctx); err != nil {
		ln.Close()
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", ln.Addr())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server, then the background services.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("stop services: %w", err))
	}
	if err := a.api.Close(); err != nil {
		a.log.WithError(err).Warn("error closing audit sink")
	}
	return errors.Join(errs...)
}
