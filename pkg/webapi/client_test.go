package webapi

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samvad-hq/steam-webapi/pkg/httpclient"
)

const testKey = "0123456789ABCDEF0123456789ABCDEF"

type stubResponse struct {
	status  int
	reason  string
	body    string
	readErr error
	reads   int
	limit   int64
	closed  bool
}

func (s *stubResponse) StatusCode() int      { return s.status }
func (s *stubResponse) ReasonPhrase() string { return s.reason }
func (s *stubResponse) ReadBody() ([]byte, error) {
	s.reads++
	if s.readErr != nil {
		return nil, s.readErr
	}
	return []byte(s.body), nil
}
func (s *stubResponse) ReadBodyN(limit int64) ([]byte, error) {
	s.limit = limit
	body, err := s.ReadBody()
	if int64(len(body)) > limit {
		body = body[:limit]
	}
	return body, err
}
func (s *stubResponse) Close() error {
	s.closed = true
	return nil
}

// stubTransport records requested URLs and replays a fixed response.
type stubTransport struct {
	resp *stubResponse
	err  error
	urls []string
}

func (s *stubTransport) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type recordingLogger struct {
	noopLogger
	infos []any
}

func (r *recordingLogger) InfoObj(_ string, _ string, obj interface{}) { r.infos = append(r.infos, obj) }

func newTestClient(t *testing.T, transport *stubTransport, secure bool) *Client {
	t.Helper()
	c, err := New(Options{APIKey: testKey, Secure: &secure, Transport: transport})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewDefaults(t *testing.T) {
	c, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.Secure() {
		t.Fatalf("expected secure by default")
	}
	if c.APIKey() != "" {
		t.Fatalf("expected no key, got %q", c.APIKey())
	}
	if c.host != DefaultHost {
		t.Fatalf("host = %q", c.host)
	}
}

func TestNewRejectsInvalidKey(t *testing.T) {
	if _, err := New(Options{APIKey: "test"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestGetAPIKey(t *testing.T) {
	c := newTestClient(t, &stubTransport{}, true)
	if got := c.APIKey(); got != testKey {
		t.Fatalf("APIKey = %q", got)
	}
}

func TestSetAPIKey(t *testing.T) {
	c := newTestClient(t, &stubTransport{}, true)
	for _, key := range []string{"FEDCBA9876543210FEDCBA9876543210", "00000000000000000000000000000000", "ABCDEFABCDEFABCDEFABCDEFABCDEFAB"} {
		if err := c.SetAPIKey(key); err != nil {
			t.Fatalf("SetAPIKey(%q): %v", key, err)
		}
		if got := c.APIKey(); got != key {
			t.Fatalf("APIKey = %q, want %q", got, key)
		}
	}
}

func TestSetAPIKeyInvalidKeepsPrevious(t *testing.T) {
	c := newTestClient(t, &stubTransport{}, true)
	for _, key := range []string{"test", strings.ToLower(testKey), testKey + "0", testKey[:31], "0123456789ABCDEF0123456789ABCDEG"} {
		err := c.SetAPIKey(key)
		if !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("SetAPIKey(%q) err = %v", key, err)
		}
		if err.Error() != "This is not a valid Steam Web API key." {
			t.Fatalf("unexpected message %q", err.Error())
		}
		if got := c.APIKey(); got != testKey {
			t.Fatalf("key changed to %q", got)
		}
	}
}

func TestLoad(t *testing.T) {
	resp := &stubResponse{status: 200, body: "test"}
	transport := &stubTransport{resp: resp}
	c := newTestClient(t, transport, true)

	got, err := c.Load(context.Background(), FormatJSON, "interface", "method", 2, NewParams("test", "param"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "test" {
		t.Fatalf("Load = %q", got)
	}
	want := "https://api.steampowered.com/interface/method/v0002/?test=param&format=json&key=" + testKey
	if len(transport.urls) != 1 || transport.urls[0] != want {
		t.Fatalf("requested %v, want %s", transport.urls, want)
	}
	if !resp.closed {
		t.Fatalf("response not closed")
	}
}

func TestLoadInsecure(t *testing.T) {
	transport := &stubTransport{resp: &stubResponse{status: 200, body: "test"}}
	c := newTestClient(t, transport, true)
	c.SetSecure(false)

	got, err := c.Load(context.Background(), FormatJSON, "interface", "method", 2, NewParams("test", "param"))
	if err != nil || got != "test" {
		t.Fatalf("Load = %q, %v", got, err)
	}
	want := "http://api.steampowered.com/interface/method/v0002/?test=param&format=json&key=" + testKey
	if transport.urls[0] != want {
		t.Fatalf("requested %s, want %s", transport.urls[0], want)
	}
}

func TestLoadWithoutKey(t *testing.T) {
	transport := &stubTransport{resp: &stubResponse{status: 200, body: "test"}}
	c := newTestClient(t, transport, true)
	if err := c.SetAPIKey(""); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}

	if _, err := c.Load(context.Background(), FormatJSON, "interface", "method", 2, NewParams("test", "param")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "https://api.steampowered.com/interface/method/v0002/?test=param&format=json"
	if transport.urls[0] != want {
		t.Fatalf("requested %s, want %s", transport.urls[0], want)
	}
}

func TestLoadDefaultsVersionAndParams(t *testing.T) {
	transport := &stubTransport{resp: &stubResponse{status: 204}}
	c := newTestClient(t, transport, true)

	if _, err := c.Load(context.Background(), FormatXML, "ISteamApps", "GetAppList", 0, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "https://api.steampowered.com/ISteamApps/GetAppList/v0001/?format=xml&key=" + testKey
	if transport.urls[0] != want {
		t.Fatalf("requested %s, want %s", transport.urls[0], want)
	}
}

func TestLoadOverridesCallerFormatAndKeyInPlace(t *testing.T) {
	transport := &stubTransport{resp: &stubResponse{status: 200}}
	c := newTestClient(t, transport, true)

	params := NewParams("key", "mine", "a", 1, "format", "xml")
	if _, err := c.Load(context.Background(), FormatVDF, "i", "m", 1, params); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "https://api.steampowered.com/i/m/v0001/?key=" + testKey + "&a=1&format=vdf"
	if transport.urls[0] != want {
		t.Fatalf("requested %s, want %s", transport.urls[0], want)
	}
	if v, _ := params.Get("format"); v != "xml" {
		t.Fatalf("caller params mutated: format=%q", v)
	}
	if params.Len() != 3 {
		t.Fatalf("caller params mutated: %v", params.Keys())
	}
}

func TestLoadLogsRedactedURL(t *testing.T) {
	log := &recordingLogger{}
	secure := true
	c, err := New(Options{APIKey: testKey, Secure: &secure, Transport: &stubTransport{resp: &stubResponse{status: 200}}, Logger: log})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Load(context.Background(), FormatJSON, "interface", "method", 2, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(log.infos) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(log.infos))
	}
	want := "https://api.steampowered.com/interface/method/v0002/?format=json&key=SECRET"
	if log.infos[0] != want {
		t.Fatalf("logged %v, want %s", log.infos[0], want)
	}
}

func TestLoadUnauthorized(t *testing.T) {
	resp := &stubResponse{status: 401, body: "ignored"}
	c := newTestClient(t, &stubTransport{resp: resp}, true)

	_, err := c.Load(context.Background(), FormatJSON, "interface", "method", 2, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err.Error() != "Your Web API request has been rejected. You most likely did not specify a valid Web API key." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if resp.reads != 0 {
		t.Fatalf("body read %d times on 401", resp.reads)
	}
	if !resp.closed {
		t.Fatalf("response not closed")
	}
}

func TestLoadHTTPError(t *testing.T) {
	resp := &stubResponse{status: 404, reason: "Not found"}
	c := newTestClient(t, &stubTransport{resp: resp}, true)

	_, err := c.Load(context.Background(), FormatJSON, "interface", "method", 2, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if httpErr.StatusCode != 404 || httpErr.Reason != "Not found" {
		t.Fatalf("unexpected error %+v", httpErr)
	}
	if err.Error() != "The Web API request has failed due to an HTTP error: Not found (status code: 404)." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrWebAPI) {
		t.Fatalf("HTTPError should match ErrWebAPI")
	}
	if !resp.closed {
		t.Fatalf("response not closed")
	}
}

func TestLoadHTTPErrorCarriesPageTitle(t *testing.T) {
	resp := &stubResponse{status: 500, reason: "Internal Server Error", body: "<html><head><title>Service Unavailable</title></head></html>"}
	c := newTestClient(t, &stubTransport{resp: resp}, true)

	_, err := c.Load(context.Background(), FormatJSON, "i", "m", 1, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.Detail != "Service Unavailable" {
		t.Fatalf("Detail = %q", httpErr.Detail)
	}
	if resp.limit != maxErrorPageBytes {
		t.Fatalf("error body read limit = %d, want %d", resp.limit, maxErrorPageBytes)
	}
	if strings.Contains(err.Error(), "Service Unavailable") {
		t.Fatalf("detail leaked into message: %s", err)
	}
}

func TestLoadTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	c := newTestClient(t, &stubTransport{err: cause}, true)

	_, err := c.Load(context.Background(), FormatJSON, "i", "m", 1, nil)
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if err.Error() != "Could not communicate with the Web API." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not wrapped")
	}
}

func TestLoadBodyReadFailure(t *testing.T) {
	resp := &stubResponse{status: 200, readErr: errors.New("unexpected EOF")}
	c := newTestClient(t, &stubTransport{resp: resp}, true)

	_, err := c.Load(context.Background(), FormatJSON, "i", "m", 1, nil)
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if !resp.closed {
		t.Fatalf("response not closed")
	}
}

func TestLoadIsRepeatable(t *testing.T) {
	for _, resp := range []*stubResponse{{status: 200, body: "same"}, {status: 404, reason: "Not found"}, {status: 401}} {
		transport := &stubTransport{resp: resp}
		c := newTestClient(t, transport, true)

		first, firstErr := c.Load(context.Background(), FormatJSON, "i", "m", 3, NewParams("a", "b"))
		for i := 0; i < 3; i++ {
			got, err := c.Load(context.Background(), FormatJSON, "i", "m", 3, NewParams("a", "b"))
			if got != first {
				t.Fatalf("call %d returned %q, first %q", i, got, first)
			}
			if (err == nil) != (firstErr == nil) || (err != nil && err.Error() != firstErr.Error()) {
				t.Fatalf("call %d error %v, first %v", i, err, firstErr)
			}
		}
		for _, u := range transport.urls {
			if u != transport.urls[0] {
				t.Fatalf("url changed between calls: %v", transport.urls)
			}
		}
	}
}

func TestGetJSON(t *testing.T) {
	transport := &stubTransport{resp: &stubResponse{status: 200, body: "test"}}
	c := newTestClient(t, transport, true)

	got, err := c.GetJSON(context.Background(), "interface", "method", 2, NewParams("test", "param"))
	if err != nil || got != "test" {
		t.Fatalf("GetJSON = %q, %v", got, err)
	}
	if !strings.Contains(transport.urls[0], "format=json") {
		t.Fatalf("format not json: %s", transport.urls[0])
	}
}
