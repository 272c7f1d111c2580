package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"phishguard/features"
)

const whoisKeyPrefix = "whois:"

var _ features.WhoisLookup = (*Whois)(nil)

// Whois caches successful registration lookups. Concurrent misses for the
// same domain share one upstream query. Store failures are logged and the
// lookup goes upstream; they never fail a check.
type Whois struct {
	next    features.WhoisLookup
	store   Store
	ttl     time.Duration
	timeout time.Duration // bound of the shared upstream query
	group   singleflight.Group
	log     zerolog.Logger
}

func NewWhois(next features.WhoisLookup, store Store, ttl, timeout time.Duration, log zerolog.Logger) *Whois {
	return &Whois{
		next:    next,
		store:   store,
		ttl:     ttl,
		timeout: timeout,
		log:     log.With().Str("component", "cache").Logger(),
	}
}

func (w *Whois) key(domain string) string {
	return whoisKeyPrefix + strings.ToLower(strings.TrimSpace(domain))
}

func (w *Whois) Registration(ctx context.Context, domain string) (features.Registration, error) {
	key := w.key(domain)

	if reg, ok := w.cached(ctx, key); ok {
		return reg, nil
	}

	// The shared query outlives any one caller: it runs detached from the
	// caller that started it, under its own deadline. Each caller still
	// gives up on its own ctx below.
	ch := w.group.DoChan(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
		defer cancel()

		reg, err := w.next.Registration(qctx, domain)
		if err != nil {
			return features.Registration{}, err
		}
		w.save(qctx, key, reg)
		return reg, nil
	})

	select {
	case r := <-ch:
		return r.Val.(features.Registration), r.Err
	case <-ctx.Done():
		return features.Registration{}, ctx.Err()
	}
}

func (w *Whois) cached(ctx context.Context, key string) (features.Registration, bool) {
	val, ok, err := w.store.Get(ctx, key)
	if err != nil {
		w.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return features.Registration{}, false
	}
	if !ok {
		return features.Registration{}, false
	}

	var reg features.Registration
	if err := json.Unmarshal([]byte(val), &reg); err != nil {
		w.log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		return features.Registration{}, false
	}
	return reg, true
}

func (w *Whois) save(ctx context.Context, key string, reg features.Registration) {
	data, err := json.Marshal(reg)
	if err != nil {
		return
	}
	if err := w.store.Set(ctx, key, string(data), w.ttl); err != nil {
		w.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
