package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"SavePublish/internal/config"
	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

const userAgent = "SavePublish/1.0"

// Client talks to the content-management host: JSON endpoints for items,
// workflow and publishing, admin pages for configuration trees.
type Client struct {
	baseURL       string
	apiKey        string
	targetsPage   string
	languagesPage string
	indexesPage   string
	http          *http.Client
	logger        *slog.Logger
}

var (
	_ ports.ItemRepository   = (*Client)(nil)
	_ ports.WorkflowOracle   = (*Client)(nil)
	_ ports.PublishExecutor  = (*Client)(nil)
	_ ports.TargetResolver   = (*Client)(nil)
	_ ports.LanguageResolver = (*Client)(nil)
)

// NewClient creates a reusable host client; a nil http.Client gets the
// configured timeout.
func NewClient(cfg config.HostConfig, client *http.Client, log *slog.Logger) *Client {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		targetsPage:   cfg.TargetsPage,
		languagesPage: cfg.LanguagesPage,
		indexesPage:   cfg.IndexesPage,
		http:          client,
		logger:        log,
	}
}

// Item resolves one item version; a missing item yields nil.
func (c *Client) Item(ctx context.Context, ref domain.ItemRef) (*domain.Item, error) {
	var item domain.Item
	found, err := c.get(ctx, "/api/items/"+url.PathEscape(ref.ID), refQuery(ref), &item)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", ref.ID, err)
	}
	if !found {
		return nil, nil
	}
	if item.Ref.ID == "" {
		item.Ref = ref
	}
	return &item, nil
}

// Publish starts a publish job on the host.
func (c *Client) Publish(ctx context.Context, job ports.PublishJob) error {
	targets := make([]string, 0, len(job.Targets))
	for _, db := range job.Targets {
		targets = append(targets, db.Name)
	}
	languages := make([]string, 0, len(job.Languages))
	for _, lang := range job.Languages {
		languages = append(languages, lang.Code)
	}

	payload := map[string]any{
		"itemId":          job.Item.Ref.ID,
		"language":        job.Item.Ref.Language,
		"version":         job.Item.Ref.Version,
		"targets":         targets,
		"languages":       languages,
		"incrementalOnly": job.IncrementalOnly,
		"synchronous":     job.Synchronous,
	}
	if err := c.post(ctx, "/api/publish", payload, nil); err != nil {
		return fmt.Errorf("publish item %s: %w", job.Item.Ref.ID, err)
	}
	return nil
}

func refQuery(ref domain.ItemRef) url.Values {
	q := url.Values{}
	q.Set("language", ref.Language)
	q.Set("version", strconv.Itoa(ref.Version))
	return q
}

// get decodes a JSON response into v; a 404 reports found=false.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) (bool, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func statusError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if msg := strings.TrimSpace(string(payload)); msg != "" {
		return fmt.Errorf("unexpected status %s: %s", resp.Status, msg)
	}
	return fmt.Errorf("unexpected status %s", resp.Status)
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
