package lov

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Collaborator is the reference-data API consumed by the console.
type Collaborator interface {
	ListAll(ctx context.Context, orgID string) ([]ListRecord, error)
	GetByID(ctx context.Context, id string) (ListRecord, error)
	CreateOrUpdate(ctx context.Context, payload SavePayload) (SaveResult, error)
}

const (
	listAllPath = "/api/master/listOfValues/getListOfValuesByOrgId"
	recordPath  = "/api/master/listOfValues"
	maxBodySize = 4 << 20
)

// ClientConfig configures the HTTP collaborator.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *APIMetrics
}

// Client talks to the reference-data API over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	metrics    *APIMetrics
}

// NewClient constructs a new client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
	}
}

// ListAll returns every list of the organisation.
func (c *Client) ListAll(ctx context.Context, orgID string) (records []ListRecord, err error) {
	start := time.Now()
	defer func() { c.metrics.observe("list_all", start, err) }()
	query := url.Values{"orgId": []string{orgID}}
	env, err := c.do(ctx, http.MethodGet, listAllPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return env.Records(EntityKey), nil
}

// GetByID returns one list with its values.
func (c *Client) GetByID(ctx context.Context, id string) (rec ListRecord, err error) {
	start := time.Now()
	defer func() { c.metrics.observe("get_by_id", start, err) }()
	env, err := c.do(ctx, http.MethodGet, recordPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return ListRecord{}, err
	}
	records := env.Records(EntityKey)
	if len(records) == 0 {
		return ListRecord{}, fmt.Errorf("list %s: %w", id, ErrNoRecord)
	}
	return records[0], nil
}

// CreateOrUpdate upserts a list. Whether it updates depends on payload.ID.
func (c *Client) CreateOrUpdate(ctx context.Context, payload SavePayload) (res SaveResult, err error) {
	start := time.Now()
	defer func() { c.metrics.observe("create_or_update", start, err) }()
	body, err := json.Marshal(payload)
	if err != nil {
		return SaveResult{}, err
	}
	env, err := c.do(ctx, http.MethodPut, recordPath, body)
	if err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Status: env.Status, Message: env.Message}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (Envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Envelope{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		req.Header.Set(middleware.RequestIDHeader, reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Envelope{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Envelope{}, err
	}
	if resp.StatusCode >= 400 {
		msg := ""
		if env, decodeErr := DecodeEnvelope(raw); decodeErr == nil {
			msg = env.Message
		}
		return Envelope{}, &APIError{Status: resp.StatusCode, Message: msg}
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// APIError is a non-2xx answer from the reference-data API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("reference-data api returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("reference-data api returned status %d", e.Status)
}
