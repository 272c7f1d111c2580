package features

import (
	"context"
	"net"
	"time"
)

// Registration holds the registry dates of a domain. Zero values mean the
// registry did not report the date.
type Registration struct {
	Created time.Time `json:"created"`
	Expires time.Time `json:"expires"`
}

// NSAnswer is the nameserver RRset of a domain.
type NSAnswer struct {
	Count int
	TTL   uint32
}

// ProbeResult is the outcome of a full HTTP GET.
type ProbeResult struct {
	Elapsed   time.Duration
	Redirects int
	Status    int
}

type WhoisLookup interface {
	Registration(ctx context.Context, domain string) (Registration, error)
}

type DNSLookup interface {
	NS(ctx context.Context, domain string) (NSAnswer, error)
	MX(ctx context.Context, domain string) (int, error)
	Addrs(ctx context.Context, host string) ([]net.IP, error)
}

type ASNLookup interface {
	ASN(ctx context.Context, ip string) (int64, error)
}

type Prober interface {
	Probe(ctx context.Context, rawURL string) (ProbeResult, error)
}

// Lookups bundles the external collaborators of the network extractors.
// A nil member disables its extractors; they report their sentinel.
type Lookups struct {
	Whois WhoisLookup
	DNS   DNSLookup
	ASN   ASNLookup
	Probe Prober
}
