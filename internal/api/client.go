// Package api is the HTTP adapter between the todo client and the remote
// REST collection.
package api

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultTimeout    = 10 * time.Second
	DefaultCSRFHeader = "X-CSRFToken"
	DefaultCSRFCookie = "csrftoken"

	requestIDHeader = "X-Request-ID"
)

// Config describes where and how requests are sent.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CSRFHeader string
	CSRFCookie string
	UserAgent  string
}

// DefaultConfig returns the settings the client uses when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		CSRFHeader: DefaultCSRFHeader,
		CSRFCookie: DefaultCSRFCookie,
		UserAgent:  "tada",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CSRFHeader == "" {
		c.CSRFHeader = d.CSRFHeader
	}
	if c.CSRFCookie == "" {
		c.CSRFCookie = d.CSRFCookie
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}

// TokenSource yields the CSRF token attached to each request.
type TokenSource interface {
	Token() string
}

// StaticToken is a token captured once and never refreshed.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Option customizes a Client.
type Option func(*Client)

// WithTokenSource replaces the default cookie-backed token lookup.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithCSRFToken sets the token used while the cookie jar holds none.
func WithCSRFToken(token string) Option {
	return func(c *Client) { c.fallback = token }
}

// WithLogger routes request logging and resty's own diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client issues credentialed JSON requests against one base URL.
type Client struct {
	cfg      Config
	rc       *resty.Client
	base     *url.URL
	jar      http.CookieJar
	tokens   TokenSource
	fallback string
	logger   *log.Logger
}

// New builds a client. An unparseable base URL is not rejected here; requests
// made with it fail as RequestSetupError.
func New(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.tokens == nil {
		c.tokens = TokenFunc(c.cookieToken)
	}
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.IsAbs() {
		c.base = u
	}

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c.jar = jar

	c.rc = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetCookieJar(jar).
		SetLogger(c.logger).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	c.rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if tok := c.tokens.Token(); tok != "" {
			r.SetHeader(c.cfg.CSRFHeader, tok)
		}
		r.SetHeader(requestIDHeader, uuid.NewString())
		return nil
	})
	c.rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"request_id", resp.Request.Header.Get(requestIDHeader),
			"elapsed", resp.Time(),
		)
		return nil
	})
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Do sends one request. body is JSON-encoded when non-nil; result receives
// the decoded body of a 2xx response when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) (*resty.Response, error) {
	r := c.rc.R().SetContext(ctx)
	if body != nil {
		r.SetBody(body)
	}
	if result != nil {
		r.SetResult(result).ForceContentType("application/json")
	}
	return r.Execute(method, path)
}

// Cookie returns the named cookie the server set for the base URL, if any.
func (c *Client) Cookie(name string) *http.Cookie {
	if c.base == nil {
		return nil
	}
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// SetCookie stores a cookie for the base URL, as if the server had set it.
func (c *Client) SetCookie(ck *http.Cookie) {
	if c.base == nil || ck == nil {
		return
	}
	c.jar.SetCookies(c.base, []*http.Cookie{ck})
}

// CSRFToken returns the token the next request would carry.
func (c *Client) CSRFToken() string { return c.tokens.Token() }

func (c *Client) cookieToken() string {
	if ck := c.Cookie(c.cfg.CSRFCookie); ck != nil && ck.Value != "" {
		return ck.Value
	}
	return c.fallback
}
