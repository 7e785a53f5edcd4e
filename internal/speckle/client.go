// Package speckle is a minimal client for the Speckle object store: it
// downloads the object closure a validation run evaluates.
package speckle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 120 * time.Second
	maxErrorBodySize = 1 << 20 // 1 MiB
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New creates a client for one Speckle server. Both the server URL and a
// personal access token are required.
func New(baseURL, token string) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	token = strings.TrimSpace(token)

	if base == "" {
		return nil, errors.New("speckle server URL is required")
	}
	if token == "" {
		return nil, errors.New("speckle token is required")
	}

	return &Client{
		BaseURL: base,
		Token:   token,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) ensureClient() error {
	if c.BaseURL == "" {
		return errors.New("speckle server URL is required")
	}
	if c.Token == "" {
		return errors.New("speckle token is required")
	}
	if c.HTTP == nil {
		return errors.New("speckle http client is not configured")
	}
	return nil
}

// GetObject downloads the object rooted at objectID in one request. The
// server answers with either the root object carrying its children inline
// or the full closure as an array; both decode to a value the flattener
// can walk.
func (c *Client) GetObject(ctx context.Context, projectID, objectID string) (any, error) {
	if err := c.ensureClient(); err != nil {
		return nil, err
	}
	projectID = strings.TrimSpace(projectID)
	objectID = strings.TrimSpace(objectID)
	if projectID == "" {
		return nil, errors.New("speckle project id is required")
	}
	if objectID == "" {
		return nil, errors.New("speckle object id is required")
	}

	endpoint := fmt.Sprintf("%s/objects/%s/%s", c.BaseURL, url.PathEscape(projectID), url.PathEscape(objectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "speckle-checker")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch object %s: %w", objectID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("speckle api failed: status %d for %s: %s", resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}

	var root any
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode object %s: %w", objectID, err)
	}
	return root, nil
}
