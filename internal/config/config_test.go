package config

import (
	"testing"
	"time"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPECKLE_SERVER_URL", "SPECKLE_TOKEN", "SPECKLE_PROJECT_ID", "SPECKLE_MODEL_ID",
		"RULES_URL", "MIN_SEVERITY", "FALLBACK_SEVERITY", "EVAL_WORKERS",
		"HTTP_ADDR", "HTTP_TIMEOUT", "METRICS_ADDR", "DATABASE_URL",
		"RUN_INTERVAL", "RULES_WATCH", "VAULT_SECRET_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.HTTPAddr != defaultHTTPAddr {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, defaultHTTPAddr)
	}
	if cfg.MetricsAddr != defaultMetricsAddr {
		t.Fatalf("MetricsAddr = %q, want %q", cfg.MetricsAddr, defaultMetricsAddr)
	}
	if cfg.EvalWorkers != defaultEvalWorkers {
		t.Fatalf("EvalWorkers = %d, want %d", cfg.EvalWorkers, defaultEvalWorkers)
	}
	if cfg.HTTPTimeout != defaultHTTPTimeout {
		t.Fatalf("HTTPTimeout = %s, want %s", cfg.HTTPTimeout, defaultHTTPTimeout)
	}
	if cfg.MinSeverity != rules.SeverityInfo {
		t.Fatalf("MinSeverity = %q, want INFO", cfg.MinSeverity)
	}
	if cfg.FallbackSeverity != rules.SeverityError {
		t.Fatalf("FallbackSeverity = %q, want ERROR", cfg.FallbackSeverity)
	}
	if cfg.RunInterval != 0 || cfg.RulesWatch {
		t.Fatalf("scheduler settings should default off, got interval=%s watch=%v", cfg.RunInterval, cfg.RulesWatch)
	}
}

func TestLoadWithOptions_ParsesValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_SEVERITY", "warning")
	t.Setenv("FALLBACK_SEVERITY", "warn")
	t.Setenv("EVAL_WORKERS", "8")
	t.Setenv("HTTP_TIMEOUT", "90s")
	t.Setenv("RUN_INTERVAL", "15m")
	t.Setenv("RULES_WATCH", "1")

	cfg, err := LoadWithOptions(LoadOptions{})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.MinSeverity != rules.SeverityWarning || cfg.FallbackSeverity != rules.SeverityWarning {
		t.Fatalf("severities = %q/%q, want WARNING/WARNING", cfg.MinSeverity, cfg.FallbackSeverity)
	}
	if cfg.EvalWorkers != 8 {
		t.Fatalf("EvalWorkers = %d, want 8", cfg.EvalWorkers)
	}
	if cfg.HTTPTimeout != 90*time.Second {
		t.Fatalf("HTTPTimeout = %s, want 90s", cfg.HTTPTimeout)
	}
	if cfg.RunInterval.String() != "15m0s" {
		t.Fatalf("RunInterval = %s, want 15m0s", cfg.RunInterval)
	}
	if !cfg.RulesWatch {
		t.Fatalf("RulesWatch = false, want true")
	}
}

func TestLoadWithOptions_RejectsUnknownSeverity(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_SEVERITY", "CATASTROPHIC")

	if _, err := LoadWithOptions(LoadOptions{}); err == nil {
		t.Fatalf("expected an error for an unknown MIN_SEVERITY")
	}
}

func TestLoadWithOptions_RequiresSpeckleSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPECKLE_SERVER_URL", "https://speckle.example/")
	t.Setenv("SPECKLE_PROJECT_ID", "p1")
	t.Setenv("SPECKLE_MODEL_ID", "m1")

	if _, err := LoadWithOptions(LoadOptions{RequireSpeckle: true}); err == nil {
		t.Fatalf("expected an error without SPECKLE_TOKEN or VAULT_SECRET_PATH")
	}

	t.Setenv("VAULT_SECRET_PATH", "secret/data/speckle")
	cfg, err := LoadWithOptions(LoadOptions{RequireSpeckle: true})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.SpeckleServerURL != "https://speckle.example" {
		t.Fatalf("SpeckleServerURL = %q, want trailing slash trimmed", cfg.SpeckleServerURL)
	}
}

func TestLoadWithOptions_RequiresRulesURL(t *testing.T) {
	clearEnv(t)

	if _, err := LoadWithOptions(LoadOptions{RequireRules: true}); err == nil {
		t.Fatalf("expected an error without RULES_URL")
	}

	t.Setenv("RULES_URL", "rules.tsv")
	if _, err := LoadWithOptions(LoadOptions{RequireRules: true}); err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
}
