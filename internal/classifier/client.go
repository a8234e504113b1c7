// Package classifier provides the HTTP client for the external
// win-probability scoring service.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/config"
)

// Client scores feature vectors into raw (uncalibrated) win probabilities.
type Client interface {
	PredictProba(ctx context.Context, boutID uuid.UUID, features []float64, modelVersion string) (*Score, error)
	HealthCheck(ctx context.Context) error
}

// Score is a raw classifier output for one bout
type Score struct {
	BoutID       uuid.UUID `json:"bout_id"`
	Probability  float64   `json:"probability"`
	ModelVersion string    `json:"model_version"`
	ScoredAt     time.Time `json:"scored_at"`
}

// HTTPClient provides HTTP client for the classifier service
type HTTPClient struct {
	client  *http.Client
	baseURL string
	logger  *logrus.Logger
}

// NewHTTPClient creates a new HTTP client for the classifier service
func NewHTTPClient(cfg *config.ClassifierConfig, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		baseURL: cfg.HTTPAddress,
		logger:  logger,
	}
}

// predictRequest represents the scoring request payload
type predictRequest struct {
	BoutID       string    `json:"bout_id"`
	Features     []float64 `json:"features"`
	ModelVersion string    `json:"model_version"`
}

// predictResponse represents the scoring response
type predictResponse struct {
	BoutID       string  `json:"bout_id"`
	Probability  float64 `json:"probability"`
	ModelVersion string  `json:"model_version"`
}

// PredictProba scores a feature vector via HTTP
func (c *HTTPClient) PredictProba(ctx context.Context, boutID uuid.UUID, features []float64, modelVersion string) (*Score, error) {
	start := time.Now()

	if modelVersion == "" {
		modelVersion = "latest"
	}

	jsonData, err := json.Marshal(predictRequest{
		BoutID:       boutID.String(),
		Features:     features,
		ModelVersion: modelVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/predict_proba", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("scoring request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var predResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if predResp.Probability < 0 || predResp.Probability > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, predResp.Probability)
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"bout_id":       boutID,
			"model_version": predResp.ModelVersion,
			"duration":      time.Since(start),
		}).Debug("Scored bout")
	}

	return &Score{
		BoutID:       boutID,
		Probability:  predResp.Probability,
		ModelVersion: predResp.ModelVersion,
		ScoredAt:     time.Now(),
	}, nil
}

// HealthCheck checks classifier service health
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return nil
}
