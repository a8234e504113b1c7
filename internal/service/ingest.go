package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/ingestion"
	"github.com/yourusername/fightprob/internal/metrics"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/repository"
)

const ingestTimeout = 10 * time.Second

// OddsIngestor pulls the odds board from the provider and persists it.
type OddsIngestor struct {
	client *ingestion.OddsAPIClient
	odds   repository.OddsRepository
	logger *logrus.Logger
}

// NewOddsIngestor creates an odds ingestion service
func NewOddsIngestor(client *ingestion.OddsAPIClient, odds repository.OddsRepository, logger *logrus.Logger) *OddsIngestor {
	return &OddsIngestor{client: client, odds: odds, logger: logger}
}

// IngestOnce fetches the current board and stores every usable quote.
func (s *OddsIngestor) IngestOnce(ctx context.Context) error {
	quotes, err := s.client.FetchQuotes(ctx)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		s.logger.Debug("No odds quotes on the board")
		return nil
	}

	batch := make([]*models.OddsQuote, len(quotes))
	for i := range quotes {
		batch[i] = &quotes[i]
	}
	if err := s.odds.InsertBatch(ctx, batch); err != nil {
		return err
	}

	metrics.OddsQuotesIngestedTotal.Add(float64(len(batch)))
	s.logger.WithField("quotes", len(batch)).Info("Stored odds quotes")
	return nil
}

// HandleStreamQuote stores a single live quote. Used as the websocket
// stream callback.
func (s *OddsIngestor) HandleStreamQuote(quote models.OddsQuote) {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	if err := s.odds.Insert(ctx, &quote); err != nil {
		s.logger.WithError(err).WithField("bout_id", quote.BoutID).Warn("Failed to store live quote")
		return
	}
	metrics.OddsQuotesIngestedTotal.Inc()
}
