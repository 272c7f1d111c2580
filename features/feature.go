package features

// Feature identifies one of the fixed positions of the feature vector.
// The numeric value is the position; reordering these constants changes
// the vector layout the model was trained on.
type Feature int

const (
	DirectoryLength Feature = iota
	TimeDomainActivation
	ASNIP
	TimeResponse
	LengthURL
	TTLNameservers
	QtyDotDomain
	TimeDomainExpiration
	QtyNameservers
	DomainLength
	QtySlashURL
	QtyMXServers
	QtyHyphenDirectory
	QtyVowelsDomain
	QtyIPResolved
	FileLength
	QtyRedirects
	QtySlashDirectory
	QtyDotURL
	QtyDotFile

	// NumFeatures is the length of every feature vector.
	NumFeatures
)

// Kind is the semantic type of a feature value.
type Kind int

const (
	KindCount Kind = iota
	KindDays
	KindSeconds
	KindTTL
)

type slot struct {
	name     string
	kind     Kind
	sentinel float64
	network  bool
}

// Sentinels are deliberately not uniform: counts fall back to 0, dates and
// ambiguous counts to -1, and response time to a plausible median.
var slots = [NumFeatures]slot{
	DirectoryLength:      {"directory_length", KindCount, 0, false},
	TimeDomainActivation: {"time_domain_activation", KindDays, -1, true},
	ASNIP:                {"asn_ip", KindCount, 0, true},
	TimeResponse:         {"time_response", KindSeconds, 0.207, true},
	LengthURL:            {"length_url", KindCount, 0, false},
	TTLNameservers:       {"ttl_ns", KindTTL, 0, true},
	QtyDotDomain:         {"qty_dot_domain", KindCount, 0, false},
	TimeDomainExpiration: {"time_domain_expiration", KindDays, -1, true},
	QtyNameservers:       {"qty_nameservers", KindCount, 0, true},
	DomainLength:         {"domain_length", KindCount, 0, false},
	QtySlashURL:          {"qty_slash_url", KindCount, 0, false},
	QtyMXServers:         {"qty_mx_servers", KindCount, 0, true},
	QtyHyphenDirectory:   {"qty_hyphen_directory", KindCount, 0, false},
	QtyVowelsDomain:      {"qty_vowels_domain", KindCount, 0, false},
	QtyIPResolved:        {"qty_ip_resolved", KindCount, -1, true},
	FileLength:           {"file_length", KindCount, 0, false},
	QtyRedirects:         {"qty_redirects", KindCount, -1, true},
	QtySlashDirectory:    {"qty_slash_directory", KindCount, 0, false},
	QtyDotURL:            {"qty_dot_url", KindCount, 0, false},
	QtyDotFile:           {"qty_dot_file", KindCount, 0, false},
}

func (f Feature) valid() bool { return f >= 0 && f < NumFeatures }

// String returns the schema name of the feature.
func (f Feature) String() string {
	if !f.valid() {
		return "unknown"
	}
	return slots[f].name
}

func (f Feature) Kind() Kind { return slots[f].kind }

// Sentinel is the value substituted when the feature cannot be extracted.
func (f Feature) Sentinel() float64 { return slots[f].sentinel }

// Network reports whether extracting the feature needs an external lookup.
func (f Feature) Network() bool { return slots[f].network }

// All returns every feature in vector order.
func All() []Feature {
	out := make([]Feature, NumFeatures)
	for i := range out {
		out[i] = Feature(i)
	}
	return out
}

// Names returns the feature names in vector order.
func Names() []string {
	out := make([]string, NumFeatures)
	for i, s := range slots {
		out[i] = s.name
	}
	return out
}

// ByName resolves a schema name to its feature.
func ByName(name string) (Feature, bool) {
	for i, s := range slots {
		if s.name == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// Sentinels returns a vector where every slot holds its fallback value.
func Sentinels() [NumFeatures]float64 {
	var out [NumFeatures]float64
	for i, s := range slots {
		out[i] = s.sentinel
	}
	return out
}
