package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_Order(t *testing.T) {
	want := []string{
		"directory_length",
		"time_domain_activation",
		"asn_ip",
		"time_response",
		"length_url",
		"ttl_ns",
		"qty_dot_domain",
		"time_domain_expiration",
		"qty_nameservers",
		"domain_length",
		"qty_slash_url",
		"qty_mx_servers",
		"qty_hyphen_directory",
		"qty_vowels_domain",
		"qty_ip_resolved",
		"file_length",
		"qty_redirects",
		"qty_slash_directory",
		"qty_dot_url",
		"qty_dot_file",
	}
	require.Equal(t, want, Names())
	for i, name := range want {
		f, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, Feature(i), f)
		assert.Equal(t, name, f.String())
	}
}

func TestSentinels(t *testing.T) {
	want := map[Feature]float64{
		TimeDomainActivation: -1,
		ASNIP:                0,
		TimeResponse:         0.207,
		TTLNameservers:       0,
		TimeDomainExpiration: -1,
		QtyNameservers:       0,
		QtyMXServers:         0,
		QtyIPResolved:        -1,
		QtyRedirects:         -1,
	}
	network := 0
	for _, f := range All() {
		if !f.Network() {
			assert.Zero(t, f.Sentinel(), "lexical feature %s", f)
			continue
		}
		network++
		v, ok := want[f]
		require.True(t, ok, "unexpected network feature %s", f)
		assert.Equal(t, v, f.Sentinel(), "feature %s", f)
	}
	assert.Equal(t, len(want), network)
	assert.Equal(t, 11, int(NumFeatures)-network)
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("qty_at_url")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Feature(-1).String())
	assert.Equal(t, "unknown", NumFeatures.String())
}
