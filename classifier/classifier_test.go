package classifier

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/features"
)

func TestLoadSchema(t *testing.T) {
	s, err := LoadSchema("testdata/feature_names.json")
	require.NoError(t, err)
	assert.Equal(t, features.Names(), s.Names())
	assert.Equal(t, int(features.NumFeatures), s.Len())
}

func TestLoadSchema_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	_, err := LoadSchema(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = LoadSchema(write("bad.json", `{"not":"an array"}`))
	assert.Error(t, err)

	_, err = LoadSchema(write("short.json", `["length_url"]`))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestNewSchema_Validation(t *testing.T) {
	names := features.Names()

	unknown := slices.Clone(names)
	unknown[3] = "qty_at_url"
	_, err := NewSchema(unknown)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "qty_at_url")

	dup := slices.Clone(names)
	dup[19] = dup[0]
	_, err = NewSchema(dup)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = NewSchema(names[:19])
	assert.ErrorIs(t, err, ErrSchema)
}

func TestSchema_Assemble(t *testing.T) {
	var values [features.NumFeatures]float64
	for i := range values {
		values[i] = float64(i)
	}

	v := DefaultSchema().Assemble(values)
	assert.Equal(t, values[:], v.Values())

	// A reversed schema reverses the vector.
	names := features.Names()
	slices.Reverse(names)
	s, err := NewSchema(names)
	require.NoError(t, err)

	v = s.Assemble(values)
	require.Equal(t, 20, v.Len())
	for i := 0; i < v.Len(); i++ {
		assert.Equal(t, float64(19-i), v.At(i))
	}

	named := v.Named()
	assert.Equal(t, "qty_dot_file", named[0].Name)
	assert.Equal(t, float64(features.QtyDotFile), named[0].Value)
	assert.Equal(t, "directory_length", named[19].Name)
}

func TestVector_ValuesIsCopy(t *testing.T) {
	var values [features.NumFeatures]float64
	v := DefaultSchema().Assemble(values)
	out := v.Values()
	out[0] = 42
	assert.Equal(t, 0.0, v.At(0))
}

func loadForest(t *testing.T) *Forest {
	t.Helper()
	f, err := LoadForest("testdata/forest.json")
	require.NoError(t, err)
	return f
}

func vectorOf(set map[features.Feature]float64) Vector {
	values := features.Sentinels()
	for f, x := range set {
		values[f] = x
	}
	return DefaultSchema().Assemble(values)
}

func TestForest_Predict(t *testing.T) {
	f := loadForest(t)
	require.NoError(t, f.CheckSchema(DefaultSchema()))

	tests := []struct {
		name  string
		set   map[features.Feature]float64
		proba float64
		want  Label
	}{
		{
			name:  "young domain long url",
			set:   map[features.Feature]float64{features.TimeDomainActivation: 10, features.LengthURL: 80},
			proba: (0.9 + 0.8) / 2,
			want:  Phishing,
		},
		{
			name:  "old domain short url resolving",
			set:   map[features.Feature]float64{features.TimeDomainActivation: 1000, features.LengthURL: 30, features.QtyIPResolved: 2},
			proba: (0.2 + 1.0/7) / 2,
			want:  Legitimate,
		},
		{
			name:  "old domain not resolving",
			set:   map[features.Feature]float64{features.TimeDomainActivation: 1000, features.LengthURL: 30},
			proba: (0.2 + 1.0) / 2,
			want:  Phishing,
		},
		{
			// Split thresholds are inclusive on the left.
			name:  "on threshold",
			set:   map[features.Feature]float64{features.TimeDomainActivation: 30, features.LengthURL: 54, features.QtyIPResolved: 1},
			proba: (0.9 + 1.0/7) / 2,
			want:  Phishing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := vectorOf(tt.set)
			p, err := f.Probability(v)
			require.NoError(t, err)
			assert.InDelta(t, tt.proba, p, 1e-9)

			got, err := f.Predict(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForest_SchemaOrderMatters(t *testing.T) {
	f := loadForest(t)

	names := features.Names()
	names[1], names[2] = names[2], names[1]
	s, err := NewSchema(names)
	require.NoError(t, err)

	assert.ErrorIs(t, f.CheckSchema(s), ErrSchema)
}

func TestParseForest_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `forest`},
		{"no trees", `{"n_features":20,"trees":[]}`},
		{"no features", `{"n_features":0,"trees":[{"feature":[-2],"threshold":[-2],"children_left":[-1],"children_right":[-1],"value":[[1,1]]}]}`},
		{"three classes", `{"n_features":20,"classes":[0,1,2],"trees":[{"feature":[-2],"threshold":[-2],"children_left":[-1],"children_right":[-1],"value":[[1,1]]}]}`},
		{"ragged arrays", `{"n_features":20,"trees":[{"feature":[0,-2],"threshold":[1],"children_left":[1,-1],"children_right":[1,-1],"value":[[1,1],[1,1]]}]}`},
		{"child cycle", `{"n_features":20,"trees":[{"feature":[0,-2],"threshold":[1,-2],"children_left":[0,-1],"children_right":[1,-1],"value":[[1,1],[1,1]]}]}`},
		{"feature out of range", `{"n_features":20,"trees":[{"feature":[20,-2,-2],"threshold":[1,-2,-2],"children_left":[1,-1,-1],"children_right":[2,-1,-1],"value":[[1,1],[1,1],[1,1]]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseForest([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestForest_WrongFeatureCount(t *testing.T) {
	f, err := ParseForest([]byte(`{"n_features":19,"trees":[{"feature":[-2],"threshold":[-2],"children_left":[-1],"children_right":[-1],"value":[[1,3]]}]}`))
	require.NoError(t, err)

	assert.ErrorIs(t, f.CheckSchema(DefaultSchema()), ErrSchema)

	_, err = f.Predict(DefaultSchema().Assemble(features.Sentinels()))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestForest_ClassOrder(t *testing.T) {
	// Phishing listed first: leaf values are read the other way round.
	f, err := ParseForest([]byte(`{"n_features":20,"classes":[1,0],"trees":[{"feature":[-2],"threshold":[-2],"children_left":[-1],"children_right":[-1],"value":[[3,1]]}]}`))
	require.NoError(t, err)

	p, err := f.Probability(DefaultSchema().Assemble(features.Sentinels()))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-9)
}

func BenchmarkForest_Predict(b *testing.B) {
	f, err := LoadForest("testdata/forest.json")
	require.NoError(b, err)
	v := DefaultSchema().Assemble(features.Sentinels())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.Predict(v)
	}
}
