package webapi

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxErrorPageBytes = 64 << 10

// errorPageDetail extracts a human-readable headline from an HTML error page.
// Non-HTML bodies yield an empty string.
func errorPageDetail(body []byte) string {
	if len(body) > maxErrorPageBytes {
		body = body[:maxErrorPageBytes]
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	for _, sel := range []string{"title", "h1"} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
