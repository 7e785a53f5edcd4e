package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultMetricsAddr = "off"
	defaultHTTPTimeout = 30 * time.Second
	defaultEvalWorkers = 4
)

type Config struct {
	SpeckleServerURL string
	SpeckleToken     string
	SpeckleProjectID string
	SpeckleModelID   string
	RulesURL         string
	MinSeverity      rules.Severity
	FallbackSeverity rules.Severity
	EvalWorkers      int
	HTTPAddr         string
	HTTPTimeout      time.Duration
	MetricsAddr      string
	DatabaseURL      string
	RunInterval      time.Duration
	RulesWatch       bool
	VaultSecretPath  string
}

type LoadOptions struct {
	RequireDatabaseURL bool
	RequireSpeckle     bool
	RequireRules       bool
}

// Load reads configuration for a validation run: Speckle source and rule
// table locations are required, persistence is optional.
func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireSpeckle: true, RequireRules: true})
}

// LoadRulesOnly reads configuration for commands that only touch the rule
// table.
func LoadRulesOnly() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireRules: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		SpeckleServerURL: strings.TrimRight(strings.TrimSpace(os.Getenv("SPECKLE_SERVER_URL")), "/"),
		SpeckleToken:     strings.TrimSpace(os.Getenv("SPECKLE_TOKEN")),
		SpeckleProjectID: strings.TrimSpace(os.Getenv("SPECKLE_PROJECT_ID")),
		SpeckleModelID:   strings.TrimSpace(os.Getenv("SPECKLE_MODEL_ID")),
		RulesURL:         strings.TrimSpace(os.Getenv("RULES_URL")),
		EvalWorkers:      getenvIntDefault("EVAL_WORKERS", defaultEvalWorkers),
		HTTPAddr:         getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		HTTPTimeout:      defaultHTTPTimeout,
		MetricsAddr:      getenvDefault("METRICS_ADDR", defaultMetricsAddr),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RulesWatch:       getenvBoolDefault("RULES_WATCH", false),
		VaultSecretPath:  strings.TrimSpace(os.Getenv("VAULT_SECRET_PATH")),
	}

	minSeverity, err := severityEnv("MIN_SEVERITY", rules.SeverityInfo)
	if err != nil {
		return Config{}, err
	}
	cfg.MinSeverity = minSeverity

	fallback, err := severityEnv("FALLBACK_SEVERITY", rules.SeverityError)
	if err != nil {
		return Config{}, err
	}
	cfg.FallbackSeverity = fallback

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("RUN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RunInterval = d
		}
	}

	if opts.RequireSpeckle {
		if cfg.SpeckleServerURL == "" {
			return cfg, errors.New("SPECKLE_SERVER_URL is required")
		}
		if cfg.SpeckleProjectID == "" {
			return cfg, errors.New("SPECKLE_PROJECT_ID is required")
		}
		if cfg.SpeckleModelID == "" {
			return cfg, errors.New("SPECKLE_MODEL_ID is required")
		}
		if cfg.SpeckleToken == "" && cfg.VaultSecretPath == "" {
			return cfg, errors.New("SPECKLE_TOKEN or VAULT_SECRET_PATH is required")
		}
	}
	if opts.RequireRules && cfg.RulesURL == "" {
		return cfg, errors.New("RULES_URL is required")
	}
	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func severityEnv(key string, def rules.Severity) (rules.Severity, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	s, ok := rules.ParseSeverity(v)
	if !ok {
		return def, fmt.Errorf("%s: unknown severity %q", key, v)
	}
	return s, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
