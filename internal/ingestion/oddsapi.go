package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/models"
)

// OddsAPIClient fetches moneyline quotes from the odds provider
type OddsAPIClient struct {
	http    *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	market  string
	logger  *logrus.Logger
}

// NewOddsAPIClient creates an odds provider client from configuration
func NewOddsAPIClient(cfg *config.OddsAPIConfig, logger *logrus.Logger) *OddsAPIClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.RetryAttempts
	httpCfg.RateLimit = cfg.RateLimitPerSec
	httpCfg.CircuitBreakerMax = cfg.CircuitBreakerMax

	return &OddsAPIClient{
		http:    NewRateLimitedHTTPClient(httpCfg, nil),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		market:  cfg.Market,
		logger:  logger,
	}
}

// quotePayload is the provider's wire format for one price
type quotePayload struct {
	BoutID     string    `json:"bout_id"`
	FighterID  string    `json:"fighter_id"`
	Sportsbook string    `json:"sportsbook"`
	American   string    `json:"american"`
	Time       time.Time `json:"time"`
}

// FetchQuotes pulls all current quotes for the configured market.
// Quotes with unusable prices or identifiers are skipped, not fatal.
func (c *OddsAPIClient) FetchQuotes(ctx context.Context) ([]models.OddsQuote, error) {
	endpoint := fmt.Sprintf("%s/v1/odds?market=%s&api_key=%s",
		c.baseURL, url.QueryEscape(c.market), url.QueryEscape(c.apiKey))

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Quotes []quotePayload `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode odds response: %w", err)
	}

	quotes := make([]models.OddsQuote, 0, len(payload.Quotes))
	skipped := 0
	for _, p := range payload.Quotes {
		q, err := c.toQuote(p)
		if err != nil {
			skipped++
			continue
		}
		quotes = append(quotes, q)
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"quotes":  len(quotes),
			"skipped": skipped,
		}).Info("Fetched odds quotes")
	}
	return quotes, nil
}

func (c *OddsAPIClient) toQuote(p quotePayload) (models.OddsQuote, error) {
	boutID, err := uuid.Parse(p.BoutID)
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("%w: bout id %q", models.ErrInvalidID, p.BoutID)
	}
	fighterID, err := uuid.Parse(p.FighterID)
	if err != nil {
		return models.OddsQuote{}, fmt.Errorf("%w: fighter id %q", models.ErrInvalidID, p.FighterID)
	}
	american, err := ParseAmerican(p.American)
	if err != nil {
		return models.OddsQuote{}, err
	}
	if p.Sportsbook == "" {
		return models.OddsQuote{}, fmt.Errorf("%w: missing sportsbook", models.ErrInvalidInput)
	}

	t := p.Time
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return models.OddsQuote{
		Time:       t,
		BoutID:     boutID,
		FighterID:  fighterID,
		Sportsbook: p.Sportsbook,
		American:   american,
	}, nil
}

// Close releases the underlying HTTP client
func (c *OddsAPIClient) Close() error {
	return c.http.Close()
}
