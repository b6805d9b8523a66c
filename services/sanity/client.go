// Package sanity writes documents to a Sanity dataset through the HTTP mutation API.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Document is a Sanity document. It must carry "_id" and "_type".
type Document map[string]any

// ID returns the document's _id.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Writer is what the help-center migration needs from Sanity.
type Writer interface {
	CreateOrReplace(ctx context.Context, doc Document) error
}

// APIError is a non-2xx answer from the mutation endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sanity: mutation failed with status %d: %s", e.StatusCode, e.Body)
}

// Config identifies the project and dataset to write to.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // e.g. "2024-01-01"
	Token      string
	BaseURL    string // overrides https://{project}.api.sanity.io
}

// Client implements Writer.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient validates cfg and builds a client. A nil httpClient uses a 30s-timeout default.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.ProjectID == "" && cfg.BaseURL == "" {
		return nil, errors.New("sanity: project id is required")
	}
	if cfg.Dataset == "" {
		return nil, errors.New("sanity: dataset is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("sanity: write token is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01-01"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

func (c *Client) mutateURL() string {
	base := c.cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", c.cfg.ProjectID)
	}
	version := strings.TrimPrefix(c.cfg.APIVersion, "v")
	return fmt.Sprintf("%s/v%s/data/mutate/%s", strings.TrimRight(base, "/"), version, c.cfg.Dataset)
}

type mutation struct {
	CreateOrReplace Document `json:"createOrReplace"`
}

type mutateRequest struct {
	Mutations []mutation `json:"mutations"`
}

// CreateOrReplace writes doc under its _id, replacing any existing document.
func (c *Client) CreateOrReplace(ctx context.Context, doc Document) error {
	if doc.ID() == "" {
		return errors.New("sanity: document has no _id")
	}
	body, err := json.Marshal(mutateRequest{Mutations: []mutation{{CreateOrReplace: doc}}})
	if err != nil {
		return fmt.Errorf("sanity: encode mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mutateURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sanity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sanity: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
