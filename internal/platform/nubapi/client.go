package nubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/techbyhenry/acode-api/internal/platform/logger"
	"github.com/techbyhenry/acode-api/internal/redact"
	"github.com/techbyhenry/acode-api/internal/verification"
)

const (
	// DefaultTimeout bounds each outbound request when Config.Timeout is zero.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of an upstream body is read.
	maxResponseBytes = 1 << 20

	// maxExposedBodyBytes caps rejection bodies passed back to clients.
	maxExposedBodyBytes = 4 << 10
)

// Config holds the provider endpoints and credential.
type Config struct {
	VerifyURL   string
	BankListURL string
	APIKey      string
	Timeout     time.Duration
}

// Client calls NUBAPI over HTTP.
type Client struct {
	httpClient  *http.Client
	verifyURL   *url.URL
	bankListURL *url.URL
	apiKey      string
	timeout     time.Duration
	logger      *slog.Logger
}

var _ verification.Gateway = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled cleanhttp client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client. Both URLs must be absolute.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	verifyURL, err := parseAbsoluteURL(cfg.VerifyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid verify URL: %w", err)
	}
	bankListURL, err := parseAbsoluteURL(cfg.BankListURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bank list URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		httpClient:  cleanhttp.DefaultPooledClient(),
		verifyURL:   verifyURL,
		bankListURL: bankListURL,
		apiKey:      cfg.APIKey,
		timeout:     timeout,
		logger:      logger.With(slog.String("component", "nubapi_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

// VerifyAccount implements verification.Gateway.
func (c *Client) VerifyAccount(ctx context.Context, accountNumber, bankCode string) (json.RawMessage, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	bankCode = strings.TrimSpace(bankCode)
	if accountNumber == "" || bankCode == "" {
		return nil, verification.ErrMissingInput
	}

	u := *c.verifyURL
	q := u.Query()
	q.Set("account_number", accountNumber)
	q.Set("bank_code", bankCode)
	u.RawQuery = q.Encode()

	status, body, err := c.get(ctx, &u, true)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		c.log(ctx).Warn("account verification rejected",
			slog.Int("status", status),
			slog.String("bank_code", bankCode))
		return nil, &verification.UpstreamRejectedError{
			StatusCode: status,
			Body:       exposableBody(body),
		}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: verify response is not valid JSON", verification.ErrUpstreamUnavailable)
	}
	return json.RawMessage(body), nil
}

// ListBanks implements verification.Gateway. The bank list endpoint takes no
// credential.
func (c *Client) ListBanks(ctx context.Context) ([]json.RawMessage, error) {
	status, body, err := c.get(ctx, c.bankListURL, false)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		c.log(ctx).Warn("bank list request failed", slog.Int("status", status))
		return nil, fmt.Errorf("%w: bank list returned status %d", verification.ErrUpstreamUnavailable, status)
	}

	var banks []json.RawMessage
	if err := json.Unmarshal(body, &banks); err != nil || banks == nil {
		return nil, fmt.Errorf("%w: bank list response is not a JSON array", verification.ErrUpstreamUnavailable)
	}
	return banks, nil
}

// get performs a bounded GET and reads at most maxResponseBytes. Transport
// failures of any kind come back as ErrUpstreamUnavailable.
func (c *Client) get(ctx context.Context, u *url.URL, authenticated bool) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authenticated && c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx).Error("upstream request failed",
			slog.String("host", u.Host),
			slog.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			slog.String("error", redact.Error(err)))
		return 0, nil, fmt.Errorf("%w: %s", verification.ErrUpstreamUnavailable, redact.Error(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading response: %s", verification.ErrUpstreamUnavailable, redact.Error(err))
	}
	if len(body) > maxResponseBytes {
		return 0, nil, fmt.Errorf("%w: response exceeds %d bytes", verification.ErrUpstreamUnavailable, maxResponseBytes)
	}

	c.log(ctx).Debug("upstream request completed",
		slog.String("host", u.Host),
		slog.String("path", u.Path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return resp.StatusCode, body, nil
}

// exposableBody returns body when it is small, valid JSON; otherwise nil.
func exposableBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || len(trimmed) > maxExposedBodyBytes || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, c.logger)
}
