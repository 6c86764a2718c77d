// Package app initializes and runs the user service.
// It configures logging, the user store and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/usersvc/internal/config"
	"github.com/patric-chuzhbe/usersvc/internal/logger"
	"github.com/patric-chuzhbe/usersvc/internal/router"
	"github.com/patric-chuzhbe/usersvc/internal/userstore"
)

// App encapsulates the configuration, HTTP handler and user store
// needed to run the service.
type App struct {
	cfg         *config.Config
	db          *userstore.Store
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - creating the in-memory user store
// - setting up the router and middleware
func New(options ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(options...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	err = logger.Init(app.cfg.LogLevel, app.cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app.db = userstore.New()
	app.httpHandler = router.New(app.db)

	return app, nil
}

// Run starts the HTTP server and blocks until a termination signal
// arrives or the server fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", a.cfg.RunAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.RunAddr, err)
	}

	return a.Serve(ctx, listener)
}

// Serve serves HTTP on listener until ctx is done, then shuts the
// server down gracefully within the configured timeout.
func (a *App) Serve(ctx context.Context, listener net.Listener) error {
	logger.Log.Infoln("server running", "RunAddr", listener.Addr().String())

	server := &http.Server{
		Handler:           a.httpHandler,
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal, stopping server", "users", a.db.Len())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
