package features

import (
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ParsedURL is the structural breakdown of a submitted URL. Fields that
// could not be resolved are left empty.
type ParsedURL struct {
	Raw       string // input exactly as submitted
	Scheme    string
	Host      string // network location as written, userinfo and port included
	Hostname  string // lower-case host used for lookups
	Path      string
	Directory string // path up to the last '/'
	File      string // final path segment
}

// Parse splits raw into its URL parts. It never fails: input that does not
// parse yields a ParsedURL with only Raw set.
//
// Input without "//" has no host and its whole text is the path, so
// "example.com/a" has an empty Host and Path "example.com/a".
func Parse(raw string) ParsedURL {
	p := ParsedURL{Raw: raw}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return p
	}

	p.Scheme = strings.ToLower(u.Scheme)
	p.Host = u.Host
	if u.User != nil && u.Host != "" {
		p.Host = u.User.String() + "@" + u.Host
	}
	p.Hostname = normalizeHostname(u.Hostname())

	// Percent escapes stay as written. An empty RawPath means the input
	// already matched the default encoding, so EscapedPath reproduces it.
	switch {
	case u.RawPath != "":
		p.Path = u.RawPath
	case u.Path != "":
		p.Path = u.EscapedPath()
	default:
		p.Path = u.Opaque
	}

	p.Directory, p.File = splitPath(p.Path)
	return p
}

func splitPath(path string) (dir, file string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path, path
	}
	return path[:i], path[i+1:]
}

// LookupHost is the host used for registry lookups. Unlike Hostname it
// tolerates a missing scheme ("example.com/login" resolves to
// "example.com").
func (p ParsedURL) LookupHost() string {
	if p.Hostname != "" {
		return p.Hostname
	}
	raw := strings.TrimSpace(p.Raw)
	if raw == "" || strings.Contains(raw, "://") || strings.HasPrefix(raw, "/") {
		return ""
	}
	return Parse("http://" + raw).Hostname
}

// RegisteredDomain returns the registered domain of the lookup host, see
// the package function of the same name.
func (p ParsedURL) RegisteredDomain() string {
	return RegisteredDomain(p.LookupHost())
}

// RegisteredDomain returns the public suffix of host plus one label
// ("example.co.uk" for "sub.example.co.uk"). It returns "" for IP
// literals, empty input and hosts that are themselves a public suffix.
func RegisteredDomain(host string) string {
	host = normalizeHostname(host)
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return d
}

func normalizeHostname(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ""
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	if isASCII(host) {
		return strings.ToLower(host)
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return ""
	}
	return strings.ToLower(ascii)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
