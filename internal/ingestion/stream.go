package ingestion

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/models"
)

const (
	streamReadTimeout   = 60 * time.Second
	streamReconnectMin  = time.Second
	streamReconnectMax  = 30 * time.Second
	streamWriteDeadline = 10 * time.Second
)

// QuoteHandler receives each live quote as it arrives
type QuoteHandler func(quote models.OddsQuote)

// StreamConsumer maintains a websocket subscription to the provider's
// live odds feed, reconnecting with backoff until the context is done.
type StreamConsumer struct {
	url     string
	client  *OddsAPIClient
	handler QuoteHandler
	logger  *logrus.Logger
}

// NewStreamConsumer creates a live quote consumer. The client is used
// only to reuse its payload conversion rules.
func NewStreamConsumer(url string, client *OddsAPIClient, handler QuoteHandler, logger *logrus.Logger) *StreamConsumer {
	return &StreamConsumer{url: url, client: client, handler: handler, logger: logger}
}

// Run consumes the feed until the context is cancelled. Connection
// failures back off exponentially and never abort the loop.
func (s *StreamConsumer) Run(ctx context.Context) error {
	backoff := streamReconnectMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.consumeOnce(ctx)
		if err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("Odds stream disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > streamReconnectMax {
			backoff = streamReconnectMax
		}
		if err == nil {
			backoff = streamReconnectMin
		}
	}
}

func (s *StreamConsumer) consumeOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	// Close the connection when the context ends so ReadMessage unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteDeadline))
			conn.Close()
		case <-done:
		}
	}()

	if s.logger != nil {
		s.logger.WithField("url", s.url).Info("Connected to odds stream")
	}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			return err
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var payload quotePayload
		if err := json.Unmarshal(message, &payload); err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Debug("Skipping malformed stream message")
			}
			continue
		}

		quote, err := s.client.toQuote(payload)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Debug("Skipping unusable stream quote")
			}
			continue
		}
		s.handler(quote)
	}
}
