// Package api is the typed gateway to the HandyPro Connect REST API.
//
// Every call attaches the session's bearer token, and any 401 response
// clears the session before ErrSessionExpired is returned to the caller.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultBaseURL is the default API endpoint, including the version prefix.
	DefaultBaseURL = "http://localhost:8000/api/v1"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Session is the part of the session store the client needs: the current
// token, and a way to invalidate it when the server rejects it.
type Session interface {
	Token() string
	Clear()
}

// Client is the HandyPro Connect API client.
//
//	client := api.NewClient(cfg.API.URL, api.WithSession(store))
//	jobs, err := client.ListJobs(ctx)
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	userAgent  string
	logger     *slog.Logger
	registerer prometheus.Registerer

	// token overrides the session token for a single exchange, see
	// ProfileWithToken.
	token string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithSession binds the client to a session store.
func WithSession(s Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMetrics instruments the transport and registers the collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// NewClient creates a new API client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.registerer != nil {
		c.httpClient = instrument(c.httpClient, c.registerer)
	}

	return c
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// withToken returns a copy of the client that authenticates with token and
// leaves the bound session alone on 401.
func (c *Client) withToken(token string) *Client {
	cp := *c
	cp.token = token
	cp.session = nil
	return &cp
}

func (c *Client) bearer() string {
	if c.token != "" {
		return c.token
	}
	if c.session != nil {
		return c.session.Token()
	}
	return ""
}
