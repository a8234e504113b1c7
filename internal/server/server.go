// Package server exposes the prediction API over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/metrics"
	"github.com/yourusername/fightprob/internal/repository"
	"github.com/yourusername/fightprob/internal/service"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// ClassifierPinger defines the interface for checking the scoring service.
type ClassifierPinger interface {
	HealthCheck(ctx context.Context) error
}

// Server is the prediction API server.
type Server struct {
	cfg        config.ServerConfig
	modelCfg   config.ModelConfig
	predictor  *service.Predictor
	repos      *repository.Repositories
	db         DatabasePinger
	classifier ClassifierPinger
	server     *http.Server
	logger     *logrus.Logger
	mu         sync.RWMutex
	ready      bool
}

// New creates the API server.
func New(
	cfg config.ServerConfig,
	modelCfg config.ModelConfig,
	predictor *service.Predictor,
	repos *repository.Repositories,
	db DatabasePinger,
	cls ClassifierPinger,
	logger *logrus.Logger,
) *Server {
	return &Server{
		cfg:        cfg,
		modelCfg:   modelCfg,
		predictor:  predictor,
		repos:      repos,
		db:         db,
		classifier: cls,
		logger:     logger,
	}
}

// SetReady marks the server as ready to accept prediction traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/predict", s.handlePredict)
	mux.HandleFunc("/api/v1/predictions/", s.handleGetPrediction)
	mux.HandleFunc("/api/v1/recommendations", s.handleRecommendations)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("Prediction API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests within the configured grace period.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Prediction API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.ShutdownGraceSeconds)*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
