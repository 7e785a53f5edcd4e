package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/specklesystems/speckle-automate-checker/internal/config"
	httpapp "github.com/specklesystems/speckle-automate-checker/internal/http"
	"github.com/specklesystems/speckle-automate-checker/internal/metrics"
	"github.com/specklesystems/speckle-automate-checker/internal/runner"
	"github.com/specklesystems/speckle-automate-checker/internal/store"
	"github.com/specklesystems/speckle-automate-checker/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with scheduled validation and rule table watching.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		st = store.New(pool)
	}

	r, err := buildRunner(ctx, cfg, st)
	if err != nil {
		return err
	}

	_, metricsErr := metrics.StartServer(ctx, cfg.MetricsAddr)

	var reloads <-chan struct{}
	if cfg.RulesWatch {
		if isHTTPLocation(cfg.RulesURL) {
			slog.Warn("RULES_WATCH needs a local rules file, ignoring", "rules_url", cfg.RulesURL)
		} else {
			w, err := watch.New(cfg.RulesURL, 0, slog.Default())
			if err != nil {
				return err
			}
			defer w.Close()
			w.Start(ctx)
			reloads = w.Reloads()
		}
	}

	if cfg.RunInterval > 0 || reloads != nil {
		scheduler := &runner.Scheduler{
			Runner:   r,
			Interval: cfg.RunInterval,
			Reloads:  reloads,
			Logger:   slog.Default(),
		}
		go scheduler.Run(ctx)
	}

	srv, err := httpapp.NewEchoServer(cfg, st, r)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-metricsErr:
		return err
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func isHTTPLocation(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
