package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"phishguard/classifier"
	"phishguard/features"
	"phishguard/metrics"
)

// Verdict is the outcome of one check: the label together with the
// extraction it was computed from.
type Verdict struct {
	Label  classifier.Label
	Vector classifier.Vector
	Result features.Result
}

// Service runs the extract, assemble and predict pipeline. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	extractor *features.Extractor
	schema    *classifier.Schema
	model     classifier.Model
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func NewService(ex *features.Extractor, schema *classifier.Schema, model classifier.Model, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		extractor: ex,
		schema:    schema,
		model:     model,
		metrics:   m,
		log:       log.With().Str("component", "service").Logger(),
	}
}

func (s *Service) Schema() *classifier.Schema { return s.schema }

// Check classifies raw. Extraction never fails; the error is a model
// failure.
func (s *Service) Check(ctx context.Context, raw string) (Verdict, error) {
	res := s.extractor.Extract(ctx, raw)
	s.metrics.ObservePipeline(res.Elapsed)

	v := Verdict{Result: res, Vector: s.schema.Assemble(res.Values)}

	label, err := s.model.Predict(v.Vector)
	if err != nil {
		s.metrics.IncPrediction(string(classifier.Error))
		v.Label = classifier.Error
		return v, fmt.Errorf("predict: %w", err)
	}
	v.Label = label
	s.metrics.IncPrediction(string(label))

	s.log.Info().
		Str("url", raw).
		Str("result", string(label)).
		Int("failed_lookups", len(res.Failed())).
		Dur("elapsed", res.Elapsed).
		Msg("url checked")
	return v, nil
}
