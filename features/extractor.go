package features

import (
	"context"
	"math"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxOutbound = 256
)

// Observer receives one call per extractor run.
type Observer interface {
	ObserveExtraction(feature, outcome string, d time.Duration)
}

// Extractor computes the full feature vector of a URL. All extractors run
// concurrently and every network extractor has its own deadline, so one
// request takes roughly as long as its slowest lookup.
type Extractor struct {
	lookups  Lookups
	timeout  time.Duration
	outbound *semaphore.Weighted
	now      func() time.Time
	log      zerolog.Logger
	observer Observer
}

type Option func(*Extractor)

// WithTimeout sets the per-extractor deadline of network lookups.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxOutbound caps concurrent network lookups across all requests
// served by the extractor.
func WithMaxOutbound(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.outbound = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(e *Extractor) { e.log = log.With().Str("component", "extractor").Logger() }
}

func WithObserver(o Observer) Option {
	return func(e *Extractor) { e.observer = o }
}

func NewExtractor(lookups Lookups, opts ...Option) *Extractor {
	e := &Extractor{
		lookups:  lookups,
		timeout:  DefaultTimeout,
		outbound: semaphore.NewWeighted(DefaultMaxOutbound),
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs every extractor for raw and returns all NumFeatures values
// in vector order. It never fails: an extractor that errors or runs past
// its deadline contributes its sentinel.
func (e *Extractor) Extract(ctx context.Context, raw string) Result {
	start := time.Now()
	u := Parse(raw)
	res := Result{URL: raw}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range All() {
		g.Go(func() error {
			res.Values[f], res.Outcomes[f] = e.run(gctx, f, u)
			return nil
		})
	}
	_ = g.Wait()

	res.Elapsed = time.Since(start)
	e.log.Debug().
		Str("url", raw).
		Int("failed", len(res.Failed())).
		Dur("elapsed", res.Elapsed).
		Msg("extraction finished")
	return res
}

func (e *Extractor) run(ctx context.Context, f Feature, u ParsedURL) (float64, Outcome) {
	start := time.Now()

	v, ok := Lexical(f, u)
	var err error
	if !ok {
		v, err = e.network(ctx, f, u)
	}

	outcome := Classify(err)
	if err != nil {
		v = f.Sentinel()
		e.log.Debug().
			Str("feature", f.String()).
			Str("outcome", outcome.String()).
			Err(err).
			Msg("lookup failed, using sentinel")
	}
	if e.observer != nil {
		e.observer.ObserveExtraction(f.String(), outcome.String(), time.Since(start))
	}
	return v, outcome
}

// network runs the lookup of f under its own deadline. The outbound slot is
// held until the lookup returns, even when its result is abandoned.
func (e *Extractor) network(ctx context.Context, f Feature, u ParsedURL) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.outbound.Acquire(ctx, 1); err != nil {
		return 0, err
	}

	ch := make(chan LookupResult[float64], 1)
	go func() {
		defer e.outbound.Release(1)
		v, err := e.lookup(ctx, f, u)
		ch <- LookupResult[float64]{Value: v, Err: err}
	}()

	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (e *Extractor) lookup(ctx context.Context, f Feature, u ParsedURL) (float64, error) {
	switch f {
	case TimeDomainActivation:
		reg, err := e.registration(ctx, u)
		if err != nil {
			return 0, err
		}
		if reg.Created.IsZero() {
			return 0, ErrNoCreationDate
		}
		return daysBetween(reg.Created, e.now()), nil

	case TimeDomainExpiration:
		reg, err := e.registration(ctx, u)
		if err != nil {
			return 0, err
		}
		if reg.Expires.IsZero() {
			return 0, ErrNoExpirationDate
		}
		return daysBetween(e.now(), reg.Expires), nil

	case ASNIP:
		asn, err := e.asn(ctx, u)
		return float64(asn), err

	case TimeResponse:
		pr, err := e.probe(ctx, u)
		return pr.Elapsed.Seconds(), err

	case QtyRedirects:
		pr, err := e.probe(ctx, u)
		return float64(pr.Redirects), err

	case TTLNameservers:
		ns, err := e.nameservers(ctx, u)
		return float64(ns.TTL), err

	case QtyNameservers:
		ns, err := e.nameservers(ctx, u)
		return float64(ns.Count), err

	case QtyMXServers:
		if e.lookups.DNS == nil {
			return 0, ErrLookupDisabled
		}
		domain := u.RegisteredDomain()
		if domain == "" {
			return 0, ErrNoHost
		}
		n, err := e.lookups.DNS.MX(ctx, domain)
		return float64(n), err

	case QtyIPResolved:
		if e.lookups.DNS == nil {
			return 0, ErrLookupDisabled
		}
		if u.Hostname == "" {
			return 0, ErrNoHost
		}
		ips, err := e.lookups.DNS.Addrs(ctx, u.Hostname)
		return float64(len(ips)), err
	}
	return 0, ErrLookupDisabled
}

func (e *Extractor) registration(ctx context.Context, u ParsedURL) (Registration, error) {
	if e.lookups.Whois == nil {
		return Registration{}, ErrLookupDisabled
	}
	// WHOIS gets the full host; the client falls back to the registered
	// domain itself.
	if u.RegisteredDomain() == "" {
		return Registration{}, ErrNoHost
	}
	return e.lookups.Whois.Registration(ctx, u.LookupHost())
}

func (e *Extractor) nameservers(ctx context.Context, u ParsedURL) (NSAnswer, error) {
	if e.lookups.DNS == nil {
		return NSAnswer{}, ErrLookupDisabled
	}
	domain := u.RegisteredDomain()
	if domain == "" {
		return NSAnswer{}, ErrNoHost
	}
	return e.lookups.DNS.NS(ctx, domain)
}

func (e *Extractor) probe(ctx context.Context, u ParsedURL) (ProbeResult, error) {
	if e.lookups.Probe == nil {
		return ProbeResult{}, ErrLookupDisabled
	}
	if u.Hostname == "" {
		return ProbeResult{}, ErrNoHost
	}
	return e.lookups.Probe.Probe(ctx, u.Raw)
}

// asn resolves the host to an address, preferring IPv4, and maps that
// address to its AS number. Both steps share the caller's deadline.
func (e *Extractor) asn(ctx context.Context, u ParsedURL) (int64, error) {
	if e.lookups.ASN == nil {
		return 0, ErrLookupDisabled
	}
	if u.Hostname == "" {
		return 0, ErrNoHost
	}

	ip := u.Hostname
	if net.ParseIP(ip) == nil {
		if e.lookups.DNS == nil {
			return 0, ErrLookupDisabled
		}
		ips, err := e.lookups.DNS.Addrs(ctx, u.Hostname)
		if err != nil {
			return 0, err
		}
		ip = pickIP(ips)
		if ip == "" {
			return 0, ErrNoRecords
		}
	}
	return e.lookups.ASN.ASN(ctx, ip)
}

func pickIP(ips []net.IP) string {
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String()
		}
	}
	if len(ips) > 0 {
		return ips[0].String()
	}
	return ""
}

// daysBetween counts whole days from a to b, rounding toward negative
// infinity so an expiry 12 hours ago is day -1.
func daysBetween(a, b time.Time) float64 {
	return math.Floor(b.Sub(a).Hours() / 24)
}
