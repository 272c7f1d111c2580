// Package classifier turns extracted features into a verdict: it validates
// the feature schema persisted next to the model, assembles vectors in that
// schema's order and evaluates the trained model.
package classifier

import "errors"

// Label is the verdict returned to callers.
type Label string

const (
	Phishing   Label = "phishing"
	Legitimate Label = "legitimate"
	// Error is reserved for requests that carry no URL.
	Error Label = "error"
)

// ErrSchema marks a schema or model that does not match the feature set.
// It is a startup failure, never a per-request one.
var ErrSchema = errors.New("feature schema mismatch")

// Model is a trained binary classifier.
type Model interface {
	Predict(v Vector) (Label, error)
}
