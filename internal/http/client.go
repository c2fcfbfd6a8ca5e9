// Package http implements ptero.Transport on top of go-retryablehttp.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/ptero/internal/auth"
	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/hashicorp/go-retryablehttp"
)

// Static errors for err113 compliance.
var (
	ErrDownloadStatus = errors.New("download failed")
)

// maxErrorBody bounds how much of a failed download body is read.
const maxErrorBody = 64 << 10

// Client sends built requests to one panel. It is safe for concurrent use.
type Client struct {
	baseURL        string
	tokenManager   auth.TokenManager
	httpClient     *retryablehttp.Client
	downloadClient *http.Client
	userAgent      string
	logger         ptero.Logger
	debug          bool
	timeout        time.Duration
	customClient   *http.Client
	interceptors   *ptero.InterceptorChain
	throttle       *ptero.Throttle
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger ptero.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds each request. It has no effect together with
// WithHTTPClient, whose own Timeout is kept.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.customClient = httpClient
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *ptero.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithRequestsPerMinute throttles requests client-side. Each Client gets its
// own throttle, since the panel limits each API key separately.
func WithRequestsPerMinute(requestsPerMinute int) Option {
	return func(c *Client) {
		c.throttle = ptero.NewThrottle(requestsPerMinute)
	}
}

// NewClient creates a client for the panel at baseURL. A nil tokenManager
// sends no Authorization header.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenManager: tokenManager,
		userAgent:    constants.DefaultUserAgent,
		timeout:      constants.DefaultHTTPTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.CheckRetry = func(context.Context, *http.Response, error) (bool, error) {
		return false, nil
	}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if client.customClient != nil {
		retryClient.HTTPClient = client.customClient
	} else if client.timeout > 0 {
		retryClient.HTTPClient.Timeout = client.timeout
	}

	if client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger, debug: client.debug}
	}

	if client.logger != nil && client.debug {
		retryClient.RequestLogHook = client.logRequest
		retryClient.ResponseLogHook = client.logResponse
	}

	client.httpClient = retryClient

	download := *retryClient.HTTPClient
	download.Timeout = constants.DownloadTimeout
	client.downloadClient = &download

	return client
}

// BaseURL returns the panel address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send implements ptero.Transport. Any received status is returned as a
// RawResponse; errors are *ptero.Error values of KindTransport, or
// KindValidation when no token is available.
func (c *Client) Send(ctx context.Context, spec *ptero.RequestSpec) (*ptero.RawResponse, error) {
	headers, err := c.headers(ctx, spec)
	if err != nil {
		return nil, err
	}

	req := &ptero.Request{
		Route:    spec.Route(),
		Method:   spec.Method(),
		Path:     spec.Path(),
		Headers:  headers,
		Body:     spec.Body(),
		Metadata: make(map[string]interface{}),
	}

	err = c.throttle.Wait(ctx)
	if err != nil {
		return nil, ptero.NewTransportError(err)
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, ptero.NewTransportError(err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, spec.FinalizeURI(c.baseURL), req.Body)
	if err != nil {
		return nil, ptero.NewTransportError(fmt.Errorf("creating request: %w", err))
	}

	httpReq.Header = req.Headers.Clone()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, req, &ptero.Response{Error: err})

		return nil, ptero.NewTransportError(fmt.Errorf("sending %s %s: %w", req.Method, req.Path, err))
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, req, &ptero.Response{StatusCode: resp.StatusCode, Error: err})

		return nil, &ptero.Error{
			Kind:       ptero.KindTransport,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("reading response body: %w", err),
		}
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, &ptero.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	})
	if err != nil {
		return nil, &ptero.Error{Kind: ptero.KindTransport, StatusCode: resp.StatusCode, Cause: err}
	}

	return &ptero.RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// Download streams a signed URL into w. Signed URLs carry their own token, so
// no Authorization header is sent. A non-2xx status is classified like any
// other response.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, ptero.NewValidationError(fmt.Errorf("creating download request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return 0, ptero.NewTransportError(fmt.Errorf("downloading: %w", err))
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		outcome := ptero.Classify[ptero.NoContent](&ptero.RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: body})

		return 0, fmt.Errorf("%w: %w", ErrDownloadStatus, outcome.Err())
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, &ptero.Error{Kind: ptero.KindTransport, StatusCode: resp.StatusCode, Cause: fmt.Errorf("copying download: %w", err)}
	}

	return written, nil
}

// CheckCredentials reports a missing API key as a validation error without
// building or sending a request.
func (c *Client) CheckCredentials(ctx context.Context) error {
	if c.tokenManager == nil {
		return nil
	}

	_, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return ptero.NewValidationError(fmt.Errorf("getting API key: %w", err))
	}

	return nil
}

func (c *Client) headers(ctx context.Context, spec *ptero.RequestSpec) (http.Header, error) {
	headers := make(http.Header)
	headers.Set("User-Agent", c.userAgent)
	headers.Set("Accept", spec.Accept())
	headers.Set("Content-Type", spec.ContentType())

	if c.tokenManager == nil {
		return headers, nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return nil, ptero.NewValidationError(fmt.Errorf("getting API key: %w", err))
	}

	headers.Set("Authorization", ptero.NormalizeBearer(token))

	return headers, nil
}

func (c *Client) logRequest(_ retryablehttp.Logger, req *http.Request, _ int) {
	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.Redacted(),
	})
}

func (c *Client) logResponse(_ retryablehttp.Logger, resp *http.Response) {
	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status_code": resp.StatusCode,
		"url":         resp.Request.URL.Redacted(),
	})
}

// leveledLogger adapts ptero.Logger to retryablehttp.LeveledLogger. Debug
// output is dropped unless debug is set.
type leveledLogger struct {
	logger ptero.Logger
	debug  bool
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.debug {
		l.logger.Debug(msg, fields(keysAndValues))
	}
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 < len(keysAndValues) {
			out[key] = keysAndValues[i+1]
		} else {
			out["extra"] = keysAndValues[i]
		}
	}

	return out
}
