package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/fightprob/internal/classifier"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/odds"
	"github.com/yourusername/fightprob/internal/selection"
)

const recommendationLimit = 50

type errorResponse struct {
	Error string `json:"error"`
}

type predictRequest struct {
	BoutID string `json:"bout_id"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto HTTP status codes: invalid input is
// the caller's fault (422), missing artifacts and classifier outages mean
// the service cannot answer yet (503), anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrInvalidID):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrMissingArtifact) || errors.Is(err, classifier.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		s.logger.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "malformed request body"})
		return
	}
	boutID, err := uuid.Parse(req.BoutID)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: fmt.Sprintf("invalid bout_id %q", req.BoutID)})
		return
	}

	record, err := s.predictor.Predict(r.Context(), boutID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/predictions/")
	boutID, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: fmt.Sprintf("invalid bout id %q", raw)})
		return
	}

	record, err := s.repos.Predictions.GetByBoutID(r.Context(), boutID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleRecommendations ranks upcoming bouts where the model's calibrated
// probability earns positive expected value at the freshest market price.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	bouts, err := s.repos.Bouts.GetUpcoming(r.Context(), recommendationLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	candidates := make([]selection.Candidate, 0, len(bouts))
	for _, bout := range bouts {
		quote, err := s.repos.Odds.GetLatest(r.Context(), bout.ID, bout.FighterID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			s.writeError(w, err)
			return
		}
		decimalOdds, err := odds.AmericanToDecimal(quote.American)
		if err != nil {
			continue
		}

		record, err := s.predictor.Predict(r.Context(), bout.ID)
		if err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				continue
			}
			s.writeError(w, err)
			return
		}
		candidates = append(candidates, selection.Candidate{Prediction: record, DecimalOdds: decimalOdds})
	}

	recs, err := selection.RankRecommendations(candidates,
		s.modelCfg.MinExpectedValue, s.modelCfg.MaxKellyFraction, time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady checks database and classifier connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	healthy := true

	if !s.IsReady() {
		healthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			healthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}
	if s.classifier != nil {
		if err := s.classifier.HealthCheck(ctx); err != nil {
			healthy = false
			checks["classifier"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["classifier"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}
