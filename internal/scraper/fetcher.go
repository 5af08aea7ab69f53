// Package scraper fetches the text of a target page for address extraction.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"outreach-service/internal/domain"
)

const (
	// DefaultTimeout is the total request timeout.
	DefaultTimeout = 20 * time.Second
	// maxBodyBytes caps how much of a page is read.
	maxBodyBytes = 5 << 20
	userAgent    = "OutreachScraper/1.0"
)

type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{client: &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConns:          50,
			IdleConnTimeout:       90 * time.Second,
		},
	}}
}

// NewHTTPFetcherWithClient is used by tests to point at an httptest server.
func NewHTTPFetcherWithClient(client *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: client}
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) URL", domain.ErrValidation)
	}
	return u, nil
}

// Fetch returns the page body as text. Transport and upstream errors are
// reported as domain.ErrCollaboratorFailure.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrCollaboratorFailure, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", domain.ErrCollaboratorFailure, u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: fetch %s: status %d", domain.ErrCollaboratorFailure, u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrCollaboratorFailure, u.Host, err)
	}
	return string(body), nil
}
