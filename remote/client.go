// ABOUTME: Hosted record platform client speaking JSON over HTTP
// ABOUTME: Authenticates through an oauth2 token source and tags each call with a ULID request id
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/record"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTimeout bounds one HTTP round trip when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config locates and authenticates against the platform. APIKey is sent as
// a static bearer token; ClientID, ClientSecret and TokenURL select the
// client-credentials flow instead.
type Config struct {
	BaseURL      string
	ProjectID    string
	APIKey       string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
	Timeout      time.Duration
}

// StatusError is a non-2xx response whose body carried no platform message.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("record platform returned %d", e.Code)
	}
	return fmt.Sprintf("record platform returned %d: %s", e.Code, e.Body)
}

// Client implements record.Client over HTTP.
type Client struct {
	base    *url.URL
	project string
	http    *http.Client
	logger  *zap.Logger
}

var _ record.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient supplies the base HTTP client. New copies it; authentication
// from Config is layered on the copy's Transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote base URL: %w", err)
	}

	c := &Client{
		base:    base,
		project: cfg.ProjectID,
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Work on a copy so a client passed through WithHTTPClient is left as is.
	hc := *c.http
	hc.Timeout = cfg.Timeout
	if hc.Timeout == 0 {
		hc.Timeout = c.http.Timeout
	}
	if hc.Timeout == 0 {
		hc.Timeout = DefaultTimeout
	}

	c.http = &hc
	if src := tokenSource(ctx, cfg, &hc); src != nil {
		authed := hc
		authed.Transport = &oauth2.Transport{Source: src, Base: hc.Transport}
		c.http = &authed
	}
	return c, nil
}

func tokenSource(ctx context.Context, cfg Config, h *http.Client) oauth2.TokenSource {
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.TokenSource(context.WithValue(ctx, oauth2.HTTPClient, h))
	}
	if cfg.APIKey != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	}
	return nil
}

// FetchRecords runs q against table.
func (c *Client) FetchRecords(ctx context.Context, table string, q record.Query) (*record.Response, error) {
	var resp record.Response
	if err := c.do(ctx, http.MethodPost, c.path(table, "fetch"), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecordByID fetches one record with q's projection.
func (c *Client) GetRecordByID(ctx context.Context, table string, id int, q record.Query) (*record.Response, error) {
	var resp record.Response
	if err := c.do(ctx, http.MethodPost, c.path(table, "records", strconv.Itoa(id), "fetch"), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRecord submits a batch of new records.
func (c *Client) CreateRecord(ctx context.Context, table string, req record.BatchRequest) (*record.BatchResponse, error) {
	return c.batch(ctx, http.MethodPost, table, req)
}

// UpdateRecord submits a batch of changed records. Each carries its Id.
func (c *Client) UpdateRecord(ctx context.Context, table string, req record.BatchRequest) (*record.BatchResponse, error) {
	return c.batch(ctx, http.MethodPut, table, req)
}

// DeleteRecord removes records by id.
func (c *Client) DeleteRecord(ctx context.Context, table string, req record.DeleteRequest) (*record.BatchResponse, error) {
	return c.batch(ctx, http.MethodDelete, table, req)
}

func (c *Client) batch(ctx context.Context, method, table string, body any) (*record.BatchResponse, error) {
	var resp record.BatchResponse
	if err := c.do(ctx, method, c.path(table, "records"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) path(table string, parts ...string) string {
	segs := append([]string{c.base.Path, "tables", table}, parts...)
	u := *c.base
	u.Path = strings.Join(segs, "/")
	return u.String()
}

// do sends body as JSON and decodes the reply into out. A non-2xx reply
// that still carries a platform message decodes as a failed response.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := ulid.Make().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if c.project != "" {
		req.Header.Set("X-Project-Id", c.project)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("record request failed", zap.String("request_id", reqID), zap.String("method", method), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("record request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &failure) != nil || failure.Message == "" {
			return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
