package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/specklesystems/speckle-automate-checker/internal/config"
	"github.com/specklesystems/speckle-automate-checker/internal/rules"
	"github.com/specklesystems/speckle-automate-checker/internal/rules/engine"
	"github.com/specklesystems/speckle-automate-checker/internal/store"
)

var runFailOn string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one validation pass and print the report as JSON.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd)
	},
}

func init() {
	runCmd.Flags().StringVar(&runFailOn, "fail-on", "error",
		"Exit 2 when issues at or above this severity are reported (info, warning, error, off)")
}

func runRun(cmd *cobra.Command) error {
	failOn, gate, err := parseFailOn(runFailOn)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

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

	result, err := r.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return &exitError{code: 130, err: err, silent: true}
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))

	if gate {
		if n := issuesAtOrAbove(result.Report.Summary, failOn); n > 0 {
			return &exitError{code: 2, err: fmt.Errorf("%d issues at or above %s", n, failOn)}
		}
	}
	return nil
}

func parseFailOn(raw string) (rules.Severity, bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "off", "none":
		return "", false, nil
	}
	sev, ok := rules.ParseSeverity(raw)
	if !ok {
		return "", false, fmt.Errorf("--fail-on: unknown severity %q", raw)
	}
	return sev, true, nil
}

func issuesAtOrAbove(summary engine.Summary, sev rules.Severity) int {
	switch sev {
	case rules.SeverityInfo:
		return summary.Total
	case rules.SeverityWarning:
		return summary.Warning + summary.Error
	case rules.SeverityError:
		return summary.Error
	default:
		return 0
	}
}
