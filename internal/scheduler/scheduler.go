// Package scheduler manages the recurring model refresh and odds
// ingestion jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/service"
)

// OddsIngestor pulls the current odds board and stores it.
type OddsIngestor interface {
	IngestOnce(ctx context.Context) error
}

// Scheduler manages scheduled refresh and ingestion jobs
type Scheduler struct {
	cron            *cron.Cron
	refresher       *service.Refresher
	ingestor        OddsIngestor
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(refresher *service.Refresher, ingestor OddsIngestor, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		refresher:       refresher,
		ingestor:        ingestor,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRefresh schedules the full model refresh
func (s *Scheduler) ScheduleRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
		defer cancel()

		s.logger.Info("Starting scheduled model refresh")
		if err := s.refresher.Run(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled model refresh failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled model refresh job")
	return nil
}

// ScheduleOddsPolling schedules periodic odds board ingestion
func (s *Scheduler) ScheduleOddsPolling(intervalSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.ingestor == nil {
		return fmt.Errorf("no odds ingestor configured")
	}
	if intervalSeconds < 5 {
		intervalSeconds = 5
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(intervalSeconds-1)*time.Second)
		defer cancel()

		if err := s.ingestor.IngestOnce(ctx); err != nil {
			s.logger.WithError(err).Error("Odds polling failed")
		}
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", intervalSeconds), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add polling job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval_seconds", intervalSeconds).Info("Scheduled odds polling job")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
