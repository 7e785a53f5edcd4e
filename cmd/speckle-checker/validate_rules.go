package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/specklesystems/speckle-automate-checker/internal/config"
	"github.com/specklesystems/speckle-automate-checker/internal/rules"
	"github.com/specklesystems/speckle-automate-checker/internal/rules/sheet"
)

var validateRulesCmd = &cobra.Command{
	Use:   "validate-rules",
	Short: "Parse the rule table and report diagnostics without running it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadRulesOnly()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		rows, err := sheet.Load(ctx, &http.Client{Timeout: cfg.HTTPTimeout}, cfg.RulesURL)
		if err != nil {
			return err
		}
		set := rules.Parse(rows, cfg.FallbackSeverity)

		for _, d := range set.Diagnostics {
			if d.Line > 0 {
				cmd.Printf("line %d: %s\n", d.Line, d.Message)
				continue
			}
			cmd.Printf("rule %d: %s\n", d.RuleNumber, d.Message)
		}
		cmd.Printf("validated %d rules (%d diagnostics)\n", len(set.Rules), len(set.Diagnostics))

		if len(set.Rules) == 0 {
			return fmt.Errorf("rule table %s contains no valid rules", cfg.RulesURL)
		}
		return nil
	},
}
