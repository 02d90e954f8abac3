// Package cds fetches policy records from the correspondence data service.
//
// The service answers GET {base_url}?contractnumber=N with a JSON array
// whose first element is the record a letter is filled from.
package cds

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/internal/httpclient"
	"github.com/teranos/corrfill/jsonv"
	"github.com/teranos/corrfill/logger"
	"github.com/teranos/corrfill/sym"
)

// maxBodyBytes caps how much of a response is read
const maxBodyBytes = 32 << 20

// Fetcher supplies the record for a contract number.
type Fetcher interface {
	FetchRecord(ctx context.Context, contractNumber string) (jsonv.Value, error)
}

// Client is the HTTP Fetcher.
type Client struct {
	baseURL       string
	contractParam string
	httpClient    *httpclient.SaferClient
	limiter       *rate.Limiter
	logger        *zap.SugaredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the SSRF-guarded client built from the config.
func WithHTTPClient(c *httpclient.SaferClient) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger sets the client logger (default: the "cds" component logger).
func WithLogger(l *zap.SugaredLogger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithLimiter replaces the limiter derived from requests_per_second.
func WithLimiter(l *rate.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// NewClient creates a CDS client from configuration
func NewClient(cfg am.CDSConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		baseURL:       cfg.BaseURL,
		contractParam: cfg.GetContractParam(),
		limiter:       rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.New(cfg.Timeout(), httpclient.WithPrivateHosts(cfg.AllowPrivateHosts))
	}
	if c.logger == nil {
		c.logger = logger.AddSymbol(logger.ComponentLogger("cds"), sym.Fetch)
	}
	return c
}

// RecordURL builds the request URL for a contract number
func (c *Client) RecordURL(contractNumber string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.WrapInvalidRequest(err, "invalid cds.base_url")
	}
	q := u.Query()
	q.Set(c.contractParam, contractNumber)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchRecord retrieves the record for contractNumber.
func (c *Client) FetchRecord(ctx context.Context, contractNumber string) (jsonv.Value, error) {
	contractNumber = strings.TrimSpace(contractNumber)
	if contractNumber == "" {
		return jsonv.Null(), errors.NewInvalidRequestError("contract number cannot be empty")
	}

	target, err := c.RecordURL(contractNumber)
	if err != nil {
		return jsonv.Null(), err
	}
	if _, err := c.httpClient.ValidateURL(target); err != nil {
		return jsonv.Null(), errors.WrapInvalidRequest(err, "refusing to fetch record")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		// Wait fails early when the deadline would pass before a token frees up
		if errors.Is(err, context.Canceled) {
			return jsonv.Null(), errors.Wrap(err, "fetch canceled")
		}
		return jsonv.Null(), errors.Wrapf(errors.ErrTimeout, "waiting for CDS rate limit: %v", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Get(ctx, target)
	if err != nil {
		return jsonv.Null(), classifyTransportError(ctx, err, target)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return jsonv.Null(), classifyTransportError(ctx, err, target)
	}

	c.logger.Debugw("CDS response",
		logger.FieldContract, contractNumber,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if err := statusError(resp.StatusCode, contractNumber, body); err != nil {
		return jsonv.Null(), err
	}

	record, err := ParseRecord(body)
	if err != nil {
		return jsonv.Null(), errors.Wrapf(err, "contract %s", contractNumber)
	}
	return record, nil
}

// statusError maps a non-2xx status to a sentinel error
func statusError(status int, contractNumber string, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return errors.NewNotFoundError("no record for contract %s (HTTP 404)", contractNumber)
	case status == http.StatusRequestTimeout:
		return errors.Wrapf(errors.ErrTimeout, "CDS answered HTTP %d", status)
	case status >= 400 && status < 500:
		return errors.WithDetail(
			errors.NewInvalidRequestError("CDS rejected contract %s (HTTP %d)", contractNumber, status),
			snippet(body),
		)
	default:
		return errors.WithHint(
			errors.WithDetail(
				errors.Wrapf(errors.ErrServiceUnavailable, "CDS answered HTTP %d", status),
				snippet(body),
			),
			"the data service may be down; retry later or check cds.base_url",
		)
	}
}

func classifyTransportError(ctx context.Context, err error, target string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrTimeout, "fetching %s: %v", target, err)
	}
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "fetch canceled")
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return errors.WithHint(
			errors.Wrapf(errors.ErrTimeout, "fetching %s: %v", target, err),
			"raise cds.timeout_seconds if the service is slow",
		)
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrServiceUnavailable, "fetching %s: %v", target, err),
		"check network access to cds.base_url",
	)
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
