package features

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

const fallbackNameserver = "8.8.8.8:53"

// DNSClient answers the NS, MX and address questions of the network
// extractors against a single recursive resolver.
type DNSClient struct {
	server   string
	udp      *dns.Client
	tcp      *dns.Client
	resolver *net.Resolver
	log      zerolog.Logger
}

// NewDNSClient builds a client for server (host:port). An empty server
// means the first nameserver of /etc/resolv.conf, or Google DNS when that
// file is unusable.
func NewDNSClient(server string, timeout time.Duration, log zerolog.Logger) *DNSClient {
	if server == "" {
		server = systemNameserver()
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	c := &DNSClient{
		server: server,
		udp:    &dns.Client{Net: "udp", Timeout: timeout},
		tcp:    &dns.Client{Net: "tcp", Timeout: timeout},
		log:    log.With().Str("component", "dns").Logger(),
	}
	c.resolver = &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, network, c.server)
		},
	}
	return c
}

func systemNameserver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return fallbackNameserver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

// NS returns the number of nameservers of domain and the TTL of the
// RRset (the lowest record TTL).
func (c *DNSClient) NS(ctx context.Context, domain string) (NSAnswer, error) {
	resp, err := c.exchange(ctx, domain, dns.TypeNS)
	if err != nil {
		return NSAnswer{}, err
	}

	var ans NSAnswer
	for _, rr := range resp.Answer {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}
		if ans.Count == 0 || ns.Hdr.Ttl < ans.TTL {
			ans.TTL = ns.Hdr.Ttl
		}
		ans.Count++
	}
	if ans.Count == 0 {
		return NSAnswer{}, fmt.Errorf("NS %s: %w", domain, ErrNoRecords)
	}
	return ans, nil
}

// MX returns the number of mail exchangers of domain.
func (c *DNSClient) MX(ctx context.Context, domain string) (int, error) {
	resp, err := c.exchange(ctx, domain, dns.TypeMX)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, rr := range resp.Answer {
		if _, ok := rr.(*dns.MX); ok {
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("MX %s: %w", domain, ErrNoRecords)
	}
	return n, nil
}

// Addrs resolves host to its IPv4 and IPv6 addresses.
func (c *DNSClient) Addrs(ctx context.Context, host string) ([]net.IP, error) {
	if host == "" {
		return nil, ErrNoHost
	}
	addrs, err := c.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

func (c *DNSClient) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoHost
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	qname := dns.TypeToString[qtype]

	resp, _, err := c.udp.ExchangeContext(ctx, msg, c.server)
	if err == nil && resp != nil && resp.Truncated {
		c.log.Debug().Str("name", name).Str("type", qname).Msg("truncated answer, retrying over tcp")
		resp, _, err = c.tcp.ExchangeContext(ctx, msg, c.server)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", qname, name, err)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		return resp, nil
	case dns.RcodeNameError:
		return nil, fmt.Errorf("%s %s: %w", qname, name, ErrNXDomain)
	default:
		return nil, fmt.Errorf("%s %s: rcode %s: %w", qname, name, dns.RcodeToString[resp.Rcode], ErrNoRecords)
	}
}
