package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
	"golang.org/x/time/rate"
)

const maxBodySize = 20 << 20

// HTTPFetcher performs plain GET requests against an allow-list of hosts.
// Pages that need client-side rendering must be saved by other means.
type HTTPFetcher struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	userAgent    string
	allowedHosts map[string]bool
}

func NewHTTPFetcher(httpClient *http.Client, ratePerSecond float64, userAgent string, allowedHosts []string) *HTTPFetcher {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	hosts := make(map[string]bool, len(allowedHosts))
	for _, h := range allowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts[h] = true
		}
	}

	return &HTTPFetcher{
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(limit, 1),
		userAgent:    userAgent,
		allowedHosts: hosts,
	}
}

// NewSafeClient returns a client that refuses private, loopback and
// link-local destinations.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := f.ValidateURL(rawURL); err != nil {
		return "", err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html, application/javascript, */*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}

// ValidateURL rejects non-http(s) URLs and hosts outside the allow-list.
// An empty allow-list permits every host.
func (f *HTTPFetcher) ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("disallowed scheme: %q", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if len(f.allowedHosts) > 0 && !f.allowedHosts[host] {
		return fmt.Errorf("host not allowed: %s", host)
	}

	return nil
}
