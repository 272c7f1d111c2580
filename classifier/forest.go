package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
)

var _ Model = (*Forest)(nil)

// leaf marks a node without children, as in scikit-learn's tree_ arrays.
const leaf = -1

// tree is one decision tree in scikit-learn's flat array layout: node i
// splits on feature[i] and sends x[feature[i]] <= threshold[i] left.
type tree struct {
	Feature   []int       `json:"feature"`
	Threshold []float64   `json:"threshold"`
	Left      []int       `json:"children_left"`
	Right     []int       `json:"children_right"`
	Value     [][]float64 `json:"value"`
}

type forestFile struct {
	NFeatures    int      `json:"n_features"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Classes      []int    `json:"classes"`
	Trees        []tree   `json:"trees"`
}

// Forest is a random forest exported from scikit-learn. Its prediction is
// the class with the highest mean per-tree probability.
type Forest struct {
	nFeatures int
	names     []string
	phishing  int // index of the phishing class in leaf values
	trees     []tree
}

// LoadForest reads a forest exported as JSON.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	f, err := ParseForest(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return f, nil
}

func ParseForest(data []byte) (*Forest, error) {
	var ff forestFile
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, err
	}
	if len(ff.Trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	if ff.NFeatures <= 0 {
		return nil, errors.New("n_features must be positive")
	}

	classes := ff.Classes
	if len(classes) == 0 {
		classes = []int{0, 1}
	}
	if len(classes) != 2 {
		return nil, fmt.Errorf("binary classifier expected, got %d classes", len(classes))
	}
	phishing := slices.Index(classes, 1)
	if phishing < 0 {
		return nil, fmt.Errorf("classes %v have no phishing class 1", classes)
	}

	for i, t := range ff.Trees {
		if err := t.validate(ff.NFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}

	return &Forest{
		nFeatures: ff.NFeatures,
		names:     ff.FeatureNames,
		phishing:  phishing,
		trees:     ff.Trees,
	}, nil
}

func (t tree) validate(nFeatures int) error {
	n := len(t.Feature)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		if t.Left[i] == leaf {
			if len(t.Value[i]) != 2 {
				return fmt.Errorf("node %d: leaf needs 2 class values, has %d", i, len(t.Value[i]))
			}
			continue
		}
		if t.Left[i] <= i || t.Left[i] >= n || t.Right[i] <= i || t.Right[i] >= n {
			return fmt.Errorf("node %d: child out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, t.Feature[i])
		}
	}
	return nil
}

// proba returns the class distribution of the leaf x falls into. Children
// always have a higher index than their parent, so the walk terminates.
func (t tree) proba(x []float64) (p0, p1 float64) {
	node := 0
	for t.Left[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	v := t.Value[node]
	total := v[0] + v[1]
	if total <= 0 {
		return 0.5, 0.5
	}
	return v[0] / total, v[1] / total
}

// CheckSchema verifies the forest was trained on s.
func (f *Forest) CheckSchema(s *Schema) error {
	if f.nFeatures != s.Len() {
		return fmt.Errorf("%w: model expects %d features, schema has %d", ErrSchema, f.nFeatures, s.Len())
	}
	if len(f.names) > 0 && !slices.Equal(f.names, s.names) {
		return fmt.Errorf("%w: model feature names differ from schema", ErrSchema)
	}
	return nil
}

// Probability returns the mean probability across trees that v is phishing.
func (f *Forest) Probability(v Vector) (float64, error) {
	if v.Len() != f.nFeatures {
		return 0, fmt.Errorf("%w: vector has %d values, model expects %d", ErrSchema, v.Len(), f.nFeatures)
	}
	var sum float64
	for _, t := range f.trees {
		p0, p1 := t.proba(v.values)
		if f.phishing == 0 {
			sum += p0
		} else {
			sum += p1
		}
	}
	return sum / float64(len(f.trees)), nil
}

func (f *Forest) Predict(v Vector) (Label, error) {
	p, err := f.Probability(v)
	if err != nil {
		return Error, err
	}
	if p > 0.5 {
		return Phishing, nil
	}
	return Legitimate, nil
}
