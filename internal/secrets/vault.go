// Package secrets resolves credentials that should not live in env files,
// currently the Speckle token read from a Vault KV secret.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
)

type Client struct {
	api *vaultapi.Client
}

// New builds a Vault client. An empty address falls back to the standard
// VAULT_ADDR environment variable; VAULT_TOKEN is picked up the same way.
func New(address string) (*Client, error) {
	cfg := vaultapi.DefaultConfig()
	if addr := strings.TrimSpace(address); addr != "" {
		cfg.Address = addr
	}
	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client setup: %w", err)
	}
	return &Client{api: client}, nil
}

// ReadToken reads a token string from the KV secret at path. Both KV v2
// ("data" envelope) and v1 layouts are understood; the first non-empty
// "token" or "value" field wins.
func (c *Client) ReadToken(ctx context.Context, path string) (string, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "", errors.New("vault secret path is required")
	}

	secret, err := c.api.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s is empty", path)
	}

	data := secret.Data
	if inner, ok := data["data"].(map[string]any); ok {
		data = inner
	}
	for _, key := range []string{"token", "value"} {
		if raw, ok := data[key]; ok {
			if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), nil
			}
		}
	}
	return "", fmt.Errorf("vault secret %s has no token field", path)
}
