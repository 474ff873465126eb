package httpclient

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
// The response body is left unread; the caller owns it until Close.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

// ReasonPhrase returns the status line text without the numeric code, e.g. "Not Found".
func (r *restyResponseAdapter) ReasonPhrase() string {
	return reasonPhrase(r.resp.Status(), r.resp.StatusCode())
}

func (r *restyResponseAdapter) ReadBody() ([]byte, error) {
	body := r.resp.RawBody()
	if body == nil {
		return nil, nil
	}
	return io.ReadAll(body)
}

func (r *restyResponseAdapter) ReadBodyN(limit int64) ([]byte, error) {
	body := r.resp.RawBody()
	if body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(body, limit))
}

func (r *restyResponseAdapter) Close() error {
	body := r.resp.RawBody()
	if body == nil {
		return nil
	}
	return body.Close()
}

func reasonPhrase(status string, code int) string {
	return strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
}
