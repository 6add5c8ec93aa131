package steamgriddb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxResponseSize bounds every body read. Hero images are the largest
// payloads the client handles and stay well below it.
const MaxResponseSize int64 = 64 << 20

const userAgent = "gridsetter/1"

// Fetcher retrieves the body at a URL
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.Code, body)
}

// HTTPFetcher fetches over HTTP, attaching the API key to requests for the
// API host only. Image URLs point at a CDN and never see the key.
type HTTPFetcher struct {
	client  *http.Client
	apiKey  string
	apiHost string
}

// NewHTTPFetcher creates a fetcher that authenticates against the host of
// baseURL.
func NewHTTPFetcher(apiKey, baseURL string, timeout time.Duration) *HTTPFetcher {
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Host
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		apiHost: host,
	}
}

// Fetch performs a GET and returns the body
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if f.apiKey != "" && req.URL.Host == f.apiHost {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", rawURL, MaxResponseSize)
	}
	return data, nil
}
