package icondb

import (
	"net/http"
	"time"
)

// DefaultSessionCookieName is the cookie the ICONDB server keeps its session in.
const DefaultSessionCookieName = "session_cookie_name"

// ClientOption represents an option for configuring the ICONDB client
type ClientOption func(*ClientConfig)

// ClientConfig holds the configuration for the ICONDB client
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	DefaultHeaders    map[string]string
	HTTPClient        *http.Client
	UserAgent         string
	SessionCookie     string
	SessionCookieName string
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://localhost:5000",
		Timeout:           10 * time.Second,
		RetryAttempts:     0,
		RetryDelay:        500 * time.Millisecond,
		DefaultHeaders:    map[string]string{},
		UserAgent:         "icondb-go-sdk/1.0.0",
		SessionCookieName: DefaultSessionCookieName,
	}
}

// WithBaseURL sets the base URL for the ICONDB API
func WithBaseURL(baseURL string) ClientOption {
	return func(c *ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithRetryAttempts sets how many times a request is retried after a
// transport error or a 5xx response
func WithRetryAttempts(attempts int) ClientOption {
	return func(c *ClientConfig) {
		c.RetryAttempts = attempts
	}
}

// WithRetryDelay sets the delay between retry attempts
func WithRetryDelay(delay time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.RetryDelay = delay
	}
}

// WithHeaders adds default headers to all requests
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *ClientConfig) {
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(map[string]string)
		}
		for k, v := range headers {
			c.DefaultHeaders[k] = v
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Its cookie jar, if any, is
// replaced so the session can be tracked.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = client
	}
}

// WithUserAgent sets the user agent string
func WithUserAgent(userAgent string) ClientOption {
	return func(c *ClientConfig) {
		c.UserAgent = userAgent
	}
}

// WithSessionCookie resumes a session saved from an earlier sign in.
func WithSessionCookie(value string) ClientOption {
	return func(c *ClientConfig) {
		c.SessionCookie = value
	}
}

// WithSessionCookieName overrides the name of the session cookie.
func WithSessionCookieName(name string) ClientOption {
	return func(c *ClientConfig) {
		if name != "" {
			c.SessionCookieName = name
		}
	}
}
