package httpclient

import "context"

// Response is a minimal HTTP response contract. The body is streamed: callers
// must Close the response on every path, whether or not ReadBody was called.
type Response interface {
	StatusCode() int
	ReasonPhrase() string
	ReadBody() ([]byte, error)
	// ReadBodyN reads at most limit bytes of the body.
	ReadBodyN(limit int64) ([]byte, error)
	Close() error
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
