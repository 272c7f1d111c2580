package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"phishguard/classifier"
)

const maxBodyBytes = 1 << 20

type CheckRequest struct {
	URL string `json:"url"`
}

type CheckResponse struct {
	Result classifier.Label `json:"result"`
}

type FeatureValue struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Outcome string  `json:"outcome"`
}

type FeaturesResponse struct {
	URL       string           `json:"url"`
	Result    classifier.Label `json:"result"`
	Features  []FeatureValue   `json:"features"`
	ElapsedMS int64            `json:"elapsed_ms"`
}

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With().Str("component", "api").Logger()}
}

// decodeURL reads the request body and returns its url field. ok is false
// when the body is unreadable or the field is missing or blank.
func decodeURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return "", false
	}
	if strings.TrimSpace(req.URL) == "" {
		return "", false
	}
	return req.URL, true
}

// CheckURL handles POST /check_url.
func (h *Handler) CheckURL(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeURL(w, r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, CheckResponse{Result: classifier.Error})
		return
	}

	v, err := h.svc.Check(r.Context(), raw)
	if err != nil {
		h.log.Error().Err(err).Str("url", raw).Msg("classification failed")
		writeJSON(w, http.StatusInternalServerError, CheckResponse{Result: classifier.Error})
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{Result: v.Label})
}

// Features handles POST /features: the same pipeline as CheckURL, with the
// vector and per-feature outcomes in the response.
func (h *Handler) Features(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeURL(w, r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, CheckResponse{Result: classifier.Error})
		return
	}

	v, err := h.svc.Check(r.Context(), raw)
	status := http.StatusOK
	if err != nil {
		h.log.Error().Err(err).Str("url", raw).Msg("classification failed")
		status = http.StatusInternalServerError
	}

	resp := FeaturesResponse{
		URL:       raw,
		Result:    v.Label,
		ElapsedMS: v.Result.Elapsed.Milliseconds(),
	}
	for _, f := range h.svc.Schema().Features() {
		resp.Features = append(resp.Features, FeatureValue{
			Name:    f.String(),
			Value:   v.Result.Values[f],
			Outcome: v.Result.Outcomes[f].String(),
		})
	}
	writeJSON(w, status, resp)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
