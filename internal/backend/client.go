package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"

	"github.com/nao1215/paperstat/internal/log"
	"github.com/nao1215/paperstat/internal/model"
)

const (
	// DefaultTimeout bounds one analysis request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize is the largest analysis body accepted (10 MiB).
	DefaultMaxBodySize int64 = 10 << 20

	// DefaultUserAgent identifies paperstat to the backend.
	DefaultUserAgent = "paperstat"

	// RequestIDHeader carries the per-request id.
	RequestIDHeader = "X-Request-ID"
)

// Client loads analysis payloads from one backend endpoint.
// A Client is safe for concurrent use.
type Client struct {
	endpoint    *url.URL
	httpClient  *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	cookie      string
	headers     map[string]string
	proxyAddr   string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize limits the accepted response body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithCookie sets a raw cookie string (e.g. "sessionid=abc") sent with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithProxy routes requests through the SOCKS5 proxy at "host:port".
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddr = address
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its transport is still
// wrapped so cookie, headers and request ids are sent. WithProxy is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the given endpoint, e.g.
// "https://example.com/admin/paper". It validates its arguments but does not
// contact the backend.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	c := &Client{
		endpoint:    u,
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.httpClient == nil {
		base, err := c.newTransport()
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{Transport: base}
	} else {
		// Shallow copy so the caller's client is not modified.
		hc := *c.httpClient
		c.httpClient = &hc
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = &headerInjectingTransport{
		base:      base,
		cookie:    c.cookie,
		headers:   c.headers,
		userAgent: c.userAgent,
	}
	c.httpClient.Timeout = c.timeout

	return c, nil
}

// newTransport builds the default transport, dialing through the proxy when one is set.
func (c *Client) newTransport() (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if c.proxyAddr == "" {
		return transport, nil
	}

	if !isValidProxyAddress(c.proxyAddr) {
		return nil, ErrInvalidProxyAddress
	}
	// nil auth: local SOCKS proxies rarely require it.
	dialer, err := proxy.SOCKS5("tcp", c.proxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// Endpoint returns the endpoint URL as a string.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// LoadOptions narrows the answers an analysis is computed from.
type LoadOptions struct {
	// DateStart and DateEnd are inclusive YYYY-MM-DD bounds. Empty means unbounded.
	DateStart string
	DateEnd   string
}

// Response is a successfully fetched and decoded analysis.
type Response struct {
	Payload *model.Payload

	// Body is the raw response body, as stored in snapshots.
	Body []byte

	RequestID string
	FetchedAt time.Time
}

// LoadAnalysis fetches and decodes the analysis of one survey.
// See Fetch for the error classification.
func (c *Client) LoadAnalysis(ctx context.Context, surveyID string, opts LoadOptions) (*model.Payload, error) {
	resp, err := c.Fetch(ctx, surveyID, opts)
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// Fetch performs one GET for the analysis of surveyID.
// The X-Request-ID header is the context's log request id, or a new uuid.
//
// Transport failures and non-2xx statuses are model.ErrNetwork. A body that
// is too large, is not JSON, or does not have the {sum, result} shape is
// model.ErrMalformedResponse. On error no partial payload is returned.
func (c *Client) Fetch(ctx context.Context, surveyID string, opts LoadOptions) (*Response, error) {
	surveyID = strings.TrimSpace(surveyID)
	if surveyID == "" {
		return nil, ErrEmptySurveyID
	}

	reqURL := c.analysisURL(surveyID, opts)
	requestID, ok := log.RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger := c.logger.With("survey_id", surveyID, "request_id", requestID)
	logger.Debug("fetching analysis", "url", reqURL)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Best effort
		return nil, fmt.Errorf("%w: unexpected status %s", model.ErrNetwork, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", model.ErrNetwork, err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", model.ErrMalformedResponse, c.maxBodySize)
	}

	payload, err := model.DecodePayload(body)
	if err != nil {
		return nil, err
	}

	logger.Debug("fetched analysis",
		"status", resp.StatusCode,
		"bytes", len(body),
		"questions", len(payload.Result),
		"elapsed", time.Since(start))

	return &Response{
		Payload:   payload,
		Body:      body,
		RequestID: requestID,
		FetchedAt: time.Now(),
	}, nil
}

// analysisURL builds <endpoint>/{id}/analysis/ with the date filters.
func (c *Client) analysisURL(surveyID string, opts LoadOptions) string {
	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/" + url.PathEscape(surveyID) + "/analysis/"
	u.RawPath = ""

	q := u.Query()
	if opts.DateStart != "" {
		q.Set("date_start", opts.DateStart)
	}
	if opts.DateEnd != "" {
		q.Set("date_end", opts.DateEnd)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// parseEndpoint accepts only absolute http(s) URLs with a host.
func parseEndpoint(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrInvalidEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}
	return u, nil
}

// isValidProxyAddress checks that address is "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
