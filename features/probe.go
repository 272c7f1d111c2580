package features

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxRedirects  = 30
	maxProbeBytes = 10 << 20
)

var errTooManyRedirects = errors.New("too many redirects")

// HTTPProber performs a full GET of a URL, following redirects and reading
// the body, and reports the round-trip time and the number of hops.
type HTTPProber struct {
	client    *http.Client
	userAgent string
}

func NewHTTPProber(timeout time.Duration, userAgent string) *HTTPProber {
	return &HTTPProber{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, rawURL string) (ProbeResult, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe: %v: %w", err, ErrMalformedResponse)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ProbeResult{}, fmt.Errorf("probe %q: %w", u.Scheme, ErrUnsupportedScheme)
	}
	if u.Host == "" {
		return ProbeResult{}, ErrNoHost
	}

	redirects := 0
	client := *p.client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return errTooManyRedirects
		}
		redirects = len(via)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ProbeResult{}, err
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return ProbeResult{}, err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxProbeBytes)); err != nil {
		return ProbeResult{}, err
	}

	return ProbeResult{
		Elapsed:   time.Since(start),
		Redirects: redirects,
		Status:    resp.StatusCode,
	}, nil
}
