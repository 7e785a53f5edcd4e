package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specklesystems/speckle-automate-checker/internal/config"
	"github.com/specklesystems/speckle-automate-checker/internal/runner"
	"github.com/specklesystems/speckle-automate-checker/internal/secrets"
	"github.com/specklesystems/speckle-automate-checker/internal/speckle"
	"github.com/specklesystems/speckle-automate-checker/internal/store"
)

// resolveSpeckleToken returns the API token, reading it from Vault when
// the environment does not carry one.
func resolveSpeckleToken(ctx context.Context, cfg config.Config) (string, error) {
	if cfg.SpeckleToken != "" {
		return cfg.SpeckleToken, nil
	}

	vc, err := secrets.New("")
	if err != nil {
		return "", fmt.Errorf("vault client: %w", err)
	}
	token, err := vc.ReadToken(ctx, cfg.VaultSecretPath)
	if err != nil {
		return "", fmt.Errorf("read speckle token from vault: %w", err)
	}
	return token, nil
}

func buildRunner(ctx context.Context, cfg config.Config, st *store.Store) (*runner.Runner, error) {
	token, err := resolveSpeckleToken(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := speckle.New(cfg.SpeckleServerURL, token)
	if err != nil {
		return nil, err
	}
	return runner.New(cfg, client, st, slog.Default()), nil
}
