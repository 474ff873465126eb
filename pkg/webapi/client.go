// Package webapi is a client for the Steam Web API.
//
// Calls are addressed by interface, method and version, e.g.
// ISteamUser/GetPlayerSummaries/v0002. Each Client owns its API key and
// transport settings; a process may hold any number of independently
// configured clients.
package webapi

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/steam-webapi/pkg/httpclient"
)

// DefaultHost is the Steam Web API endpoint.
const DefaultHost = "api.steampowered.com"

const defaultTimeout = 15 * time.Second

// Format selects the representation the Web API responds with.
type Format string

const (
	FormatJSON Format = "json"
	FormatVDF  Format = "vdf"
	FormatXML  Format = "xml"
)

var keyPattern = regexp.MustCompile(`^[0-9A-F]{32}$`)

// Options configures a Client.
type Options struct {
	// APIKey is a 128-bit key as 32 upper-case hex digits. Empty means no key.
	APIKey string
	// Secure selects https; nil defaults to true.
	Secure *bool
	// Host overrides DefaultHost.
	Host      string
	Transport httpclient.Client
	Logger    Logger
}

// Client issues Web API requests.
type Client struct {
	mu     sync.RWMutex
	apiKey string
	secure bool
	host   string
	http   httpclient.Client
	log    Logger
}

// New builds a client, rejecting an API key of the wrong shape.
func New(opts Options) (*Client, error) {
	if err := ValidateKey(opts.APIKey); err != nil {
		return nil, err
	}

	secure := true
	if opts.Secure != nil {
		secure = *opts.Secure
	}
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = DefaultHost
	}
	transport := opts.Transport
	if transport == nil {
		transport = httpclient.NewRestyClient(defaultTimeout)
	}

	return &Client{
		apiKey: opts.APIKey,
		secure: secure,
		host:   host,
		http:   transport,
		log:    ensureLogger(opts.Logger),
	}, nil
}

// ValidateKey reports ErrInvalidKey unless key is empty or 32 upper-case hex digits.
func ValidateKey(key string) error {
	if key != "" && !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}

// APIKey returns the key currently in use, or "" when none is set.
func (c *Client) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// SetAPIKey replaces the key. An empty key clears it. On ErrInvalidKey the
// previous key stays in place.
func (c *Client) SetAPIKey(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
	return nil
}

func (c *Client) Secure() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secure
}

// SetSecure selects https (true) or http (false) for subsequent calls.
func (c *Client) SetSecure(secure bool) {
	c.mu.Lock()
	c.secure = secure
	c.mu.Unlock()
}

// Load fetches iface/method at the given version and returns the body in the
// requested format. A version <= 0 means 1; nil params means none.
func (c *Client) Load(ctx context.Context, format Format, iface, method string, version int, params *Params) (string, error) {
	c.mu.RLock()
	key, secure, host := c.apiKey, c.secure, c.host
	c.mu.RUnlock()

	url := buildURL(secure, host, iface, method, version, mergeParams(params, format, key))

	logURL := url
	if key != "" {
		logURL = strings.ReplaceAll(url, key, "SECRET")
	}
	c.log.InfoObj("querying steam web api", "url", logURL)

	return c.fetch(ctx, url)
}

// GetJSON is Load with FormatJSON.
func (c *Client) GetJSON(ctx context.Context, iface, method string, version int, params *Params) (string, error) {
	return c.Load(ctx, FormatJSON, iface, method, version, params)
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	resp, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Close()

	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
	case code == http.StatusUnauthorized:
		return "", ErrUnauthorized
	default:
		return "", httpError(resp)
	}

	body, err := resp.ReadBody()
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	return string(body), nil
}

func httpError(resp httpclient.Response) *HTTPError {
	e := &HTTPError{StatusCode: resp.StatusCode(), Reason: resp.ReasonPhrase()}
	if body, err := resp.ReadBodyN(maxErrorPageBytes); err == nil {
		e.Detail = errorPageDetail(body)
	}
	return e
}

// mergeParams copies params and appends format and, when set, key.
func mergeParams(params *Params, format Format, key string) *Params {
	merged := params.Clone()
	merged.Set("format", string(format))
	if key != "" {
		merged.Set("key", key)
	}
	return merged
}

func buildURL(secure bool, host, iface, method string, version int, params *Params) string {
	scheme := "http"
	if secure {
		scheme = "https"
	}
	if version <= 0 {
		version = 1
	}
	return fmt.Sprintf("%s://%s/%s/%s/v%04d/?%s", scheme, host, iface, method, version, params.Encode())
}
