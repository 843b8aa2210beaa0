package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const defaultFetchTimeout = 30 * time.Second

// PageFetcher retrieves a URL and reduces it to readable article text.
// Any network failure or non-2xx response fails the whole fetch; no partial
// extraction is attempted.
type PageFetcher struct {
	client *http.Client
}

func NewPageFetcher(timeout time.Duration) *PageFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &PageFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *PageFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.ParseRequestURI(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %q: %w", pageURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %q: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %q: unexpected status %s", pageURL, resp.Status)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("extract text from %q: %w", pageURL, err)
	}
	return article.TextContent, nil
}
