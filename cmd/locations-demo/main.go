package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/toyz/locations/internal/demo"
	"github.com/toyz/locations/pkg/locations"
	"github.com/toyz/locations/pkg/locations/adapters"
)

// server is what the demo needs from an adapter.
type server interface {
	locations.Router
	Start(addr string) error
	Stop(ctx context.Context) error
	Name() string
}

func main() {
	var (
		adapter = flag.String("adapter", "", "Web server adapter to use (echo, gin, or fiber); overrides ADAPTER")
		port    = flag.Int("port", 0, "Port to run the server on; overrides PORT")
		envFile = flag.String("env-file", ".env", "Environment file to load before reading settings")
		help    = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *help {
		fmt.Println("Locations Demo - typed request locations over Echo, Gin or Fiber")
		fmt.Println("")
		fmt.Println("Usage:")
		fmt.Printf("  %s [options]\n", os.Args[0])
		fmt.Println("")
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println("")
		fmt.Println("Environment:")
		fmt.Println("  ADAPTER, PORT, APP_ENV, LOG_LEVEL, SHUTDOWN_TIMEOUT, ALLOWED_ORIGINS")
		os.Exit(0)
	}

	if *adapter != "" {
		os.Setenv("ADAPTER", *adapter)
	}
	if *port != 0 {
		os.Setenv("PORT", fmt.Sprint(*port))
	}

	cfg, err := LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newServer(cfg *Config, logger *slog.Logger) server {
	opts := []adapters.Option{
		adapters.WithLogger(logger),
		adapters.WithAccessManager(adapters.RequireRoles(demo.RolesFromHeaders)),
	}
	if len(cfg.AllowedOrigins) > 0 {
		allowed := cfg.AllowedOrigins
		opts = append(opts, adapters.WithCheckOrigin(func(r *http.Request) bool {
			return slices.Contains(allowed, r.Header.Get("Origin"))
		}))
	}

	switch cfg.Adapter {
	case "gin":
		return adapters.NewDefaultGinAdapter(opts...)
	case "fiber":
		return adapters.NewDefaultFiberAdapter(opts...)
	default:
		return adapters.NewDefaultEchoAdapter(opts...)
	}
}

func run(cfg *Config, logger *slog.Logger) error {
	srv := newServer(cfg, logger)
	locations.Locations(srv, func(b *locations.Builder) {
		demo.Register(b, demo.NewUserStore())
	}, locations.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logger.Info("starting server", "adapter", srv.Name(), "addr", cfg.Addr(), "env", cfg.Environment)
		errs <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "adapter", srv.Name(), "timeout", cfg.ShutdownTimeout)
	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop %s server: %w", srv.Name(), err)
	}
	logger.Info("server stopped")
	return nil
}
