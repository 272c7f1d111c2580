package classifier

// Vector is a feature vector in the order of the schema that built it.
type Vector struct {
	schema *Schema
	values []float64
}

// NamedValue pairs a feature name with its value.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (v Vector) Len() int { return len(v.values) }

func (v Vector) At(i int) float64 { return v.values[i] }

// Values returns a copy of the raw values.
func (v Vector) Values() []float64 { return append([]float64(nil), v.values...) }

func (v Vector) Schema() *Schema { return v.schema }

func (v Vector) Named() []NamedValue {
	out := make([]NamedValue, len(v.values))
	for i, x := range v.values {
		out[i] = NamedValue{Name: v.schema.names[i], Value: x}
	}
	return out
}
