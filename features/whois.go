package features

import (
	"context"
	"fmt"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/rs/zerolog"
)

//
// WHOIS LOOKUP
//

// WhoisClient queries registrar WHOIS servers and parses the registration
// dates out of the response.
type WhoisClient struct {
	client whoisQuerier
	log    zerolog.Logger
}

// whoisQuerier is the raw text query of *whois.Client.
type whoisQuerier interface {
	Whois(domain string, servers ...string) (string, error)
}

func NewWhoisClient(timeout time.Duration, log zerolog.Logger) *WhoisClient {
	return &WhoisClient{
		client: whois.NewClient().SetTimeout(timeout),
		log:    log.With().Str("component", "whois").Logger(),
	}
}

// Registration looks up domain and, when the registry has no record for a
// sub-domain, retries once with its registered domain
// (e.sub.example.com -> example.com).
func (c *WhoisClient) Registration(ctx context.Context, domain string) (Registration, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return Registration{}, ErrNoHost
	}

	raw, err := c.query(ctx, domain)
	if err != nil {
		return Registration{}, fmt.Errorf("whois %s: %w", domain, err)
	}

	reg, err := parseRegistration(raw)
	if err != nil {
		if parent := parentDomain(domain); parent != "" {
			c.log.Debug().Str("domain", domain).Str("parent", parent).Msg("no record, trying registered domain")
			return c.Registration(ctx, parent)
		}
		return Registration{}, fmt.Errorf("whois %s: %w", domain, err)
	}
	return reg, nil
}

// query runs the blocking WHOIS call and gives up when ctx ends; the
// client has no context support of its own.
func (c *WhoisClient) query(ctx context.Context, domain string) (string, error) {
	ch := make(chan LookupResult[string], 1)
	go func() {
		raw, err := c.client.Whois(domain)
		ch <- LookupResult[string]{Value: raw, Err: err}
	}()

	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func parseRegistration(raw string) (Registration, error) {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		return Registration{}, err
	}
	if info.Domain == nil {
		return Registration{}, ErrMalformedResponse
	}
	return Registration{
		Created: parseWhoisDate(info.Domain.CreatedDate),
		Expires: parseWhoisDate(info.Domain.ExpirationDate),
	}, nil
}

// parentDomain is the registered domain of a sub-domain, or "" when domain
// is already registered (or has none).
func parentDomain(domain string) string {
	parent := RegisteredDomain(domain)
	if parent == "" || parent == strings.ToLower(strings.TrimSuffix(domain, ".")) {
		return ""
	}
	return parent
}

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-2006 15:04:05 MST",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"January 2 2006",
}

// parseWhoisDate returns the first date of a possibly multi-valued WHOIS
// field, or the zero time when none of the known layouts match.
func parseWhoisDate(s string) time.Time {
	first := firstWhoisValue(s)
	if first == "" {
		return time.Time{}
	}
	for _, l := range whoisDateLayouts {
		if t, err := time.Parse(l, first); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstWhoisValue(s string) string {
	for _, v := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' }) {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
