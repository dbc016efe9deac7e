// Package scrape fetches raw documentation pages over HTTP.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/core/ports/driven"
)

// Ensure Scraper implements the interface.
var _ driven.DocumentSource = (*Scraper)(nil)

// DefaultTimeout bounds one page fetch.
const DefaultTimeout = 30 * time.Second

const userAgent = "docsearch-mcp/1.0"

// maxBodyBytes caps a single page body. Documentation pages are far
// smaller; the cap guards against a misconfigured base URL.
const maxBodyBytes = 8 << 20

// Scraper fetches pages relative to a documentation base URL.
type Scraper struct {
	client  *http.Client
	baseURL string
}

// New creates a scraper for the given base URL.
func New(baseURL string, timeout time.Duration) (*Scraper, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("scrape: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("scrape: invalid base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scraper{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}, nil
}

// Fetch retrieves the raw body of the page at href. Failures wrap
// domain.ErrFetchFailed so ingestion can isolate them per page.
func (s *Scraper) Fetch(ctx context.Context, href string) ([]byte, error) {
	pageURL, err := url.JoinPath(s.baseURL, href)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w: %v", href, domain.ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w: %v", href, domain.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w: %v", href, domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page %s: %w: status %d", href, domain.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("page %s: %w: %v", href, domain.ErrFetchFailed, err)
	}
	return body, nil
}
