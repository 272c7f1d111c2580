package features

import (
	"context"
	"net"
	"sync/atomic"
	"time"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeWhois struct {
	reg        Registration
	err        error
	hang       bool
	calls      atomic.Int32
	lastDomain atomic.Value
}

func (f *fakeWhois) Registration(ctx context.Context, domain string) (Registration, error) {
	f.calls.Add(1)
	f.lastDomain.Store(domain)
	if f.hang {
		<-ctx.Done()
		return Registration{}, ctx.Err()
	}
	return f.reg, f.err
}

type fakeDNS struct {
	ns    NSAnswer
	mx    int
	ips   []net.IP
	err   error
	hang  bool
	calls atomic.Int32
}

func (f *fakeDNS) wait(ctx context.Context) error {
	f.calls.Add(1)
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeDNS) NS(ctx context.Context, domain string) (NSAnswer, error) {
	if err := f.wait(ctx); err != nil {
		return NSAnswer{}, err
	}
	return f.ns, nil
}

func (f *fakeDNS) MX(ctx context.Context, domain string) (int, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	return f.mx, nil
}

func (f *fakeDNS) Addrs(ctx context.Context, host string) ([]net.IP, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.ips, nil
}

type fakeASN struct {
	asn    int64
	err    error
	hang   bool
	lastIP atomic.Value
}

func (f *fakeASN) ASN(ctx context.Context, ip string) (int64, error) {
	f.lastIP.Store(ip)
	if f.hang {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.asn, f.err
}

type fakeProber struct {
	res  ProbeResult
	err  error
	hang bool
	// ignoreCtx blocks for the full duration regardless of cancellation.
	ignoreCtx time.Duration
}

func (f *fakeProber) Probe(ctx context.Context, rawURL string) (ProbeResult, error) {
	if f.ignoreCtx > 0 {
		time.Sleep(f.ignoreCtx)
		return f.res, nil
	}
	if f.hang {
		<-ctx.Done()
		return ProbeResult{}, ctx.Err()
	}
	return f.res, f.err
}

func healthyLookups() (Lookups, *fakeWhois, *fakeDNS, *fakeASN, *fakeProber) {
	w := &fakeWhois{reg: Registration{
		Created: testNow.AddDate(0, 0, -400),
		Expires: testNow.AddDate(0, 0, 30),
	}}
	d := &fakeDNS{
		ns:  NSAnswer{Count: 2, TTL: 172800},
		mx:  3,
		ips: []net.IP{net.ParseIP("2606:2800:220:1::1"), net.ParseIP("93.184.216.34")},
	}
	a := &fakeASN{asn: 15133}
	p := &fakeProber{res: ProbeResult{Elapsed: 350 * time.Millisecond, Redirects: 2, Status: 200}}
	return Lookups{Whois: w, DNS: d, ASN: a, Probe: p}, w, d, a, p
}
