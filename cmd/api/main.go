// Package main provides the entry point for the prediction API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/agecurve"
	"github.com/yourusername/fightprob/internal/classifier"
	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/database"
	"github.com/yourusername/fightprob/internal/elo"
	"github.com/yourusername/fightprob/internal/features"
	"github.com/yourusername/fightprob/internal/ingestion"
	"github.com/yourusername/fightprob/internal/logger"
	"github.com/yourusername/fightprob/internal/metrics"
	"github.com/yourusername/fightprob/internal/persistence"
	"github.com/yourusername/fightprob/internal/repository"
	"github.com/yourusername/fightprob/internal/scheduler"
	"github.com/yourusername/fightprob/internal/server"
	"github.com/yourusername/fightprob/internal/service"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		pollSeconds = flag.Int("odds-poll-seconds", 0, "Poll the odds board every N seconds (0 disables)")
		withStream  = flag.Bool("odds-stream", false, "Consume the live odds websocket feed")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	apiLog := logger.WithComponent(appLog, "api")
	apiLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Fight win-probability API starting")

	metrics.InitRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		apiLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	apiLog.Info("Database connection established")

	repos := repository.NewRepositories(db)

	store, err := persistence.NewFileStore(cfg.Model.ArtifactDir)
	if err != nil {
		apiLog.WithError(err).Fatal("Failed to open artifact store")
	}

	engine := elo.NewEngine(cfg.Elo.Components, cfg.Elo.KBase)
	ages := agecurve.NewRegistry(store, service.AgeHistoryProvider(repos.Bouts, repos.Fighters), appLog)
	builder := features.NewBuilder(engine, ages, appLog)

	cls := classifier.NewCachedClient(&cfg.Classifier, appLog)

	predictor := service.NewPredictor(
		repos, builder, cls, store,
		cfg.Model, cfg.Classifier.ModelVersion, cfg.Elo.Components, appLog,
	)
	refresher := service.NewRefresher(
		repos, engine, ages, cls, predictor, store,
		cfg.Model, cfg.Elo, cfg.Classifier.ModelVersion, appLog,
	)

	// Jobs: daily refresh plus optional board polling
	oddsClient := ingestion.NewOddsAPIClient(&cfg.OddsAPI, appLog)
	defer oddsClient.Close()
	ingestor := service.NewOddsIngestor(oddsClient, repos.Odds, appLog)

	sched := scheduler.NewScheduler(refresher, ingestor, appLog)
	if err := sched.ScheduleRefresh(cfg.Jobs.DailyRefreshCron); err != nil {
		apiLog.WithError(err).Fatal("Failed to schedule model refresh")
	}
	if *pollSeconds > 0 {
		if err := sched.ScheduleOddsPolling(*pollSeconds); err != nil {
			apiLog.WithError(err).Fatal("Failed to schedule odds polling")
		}
	}
	if err := sched.Start(); err != nil {
		apiLog.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	if *withStream && cfg.OddsAPI.StreamURL != "" {
		stream := ingestion.NewStreamConsumer(cfg.OddsAPI.StreamURL, oddsClient, ingestor.HandleStreamQuote, appLog)
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				apiLog.WithError(err).Error("Odds stream terminated")
			}
		}()
	}

	srv := server.New(cfg.Server, cfg.Model, predictor, repos, db, cls, appLog)
	srv.SetReady(true)

	if err := srv.Start(ctx); err != nil {
		apiLog.WithError(err).Fatal("API server failed")
	}
	apiLog.Info("Shutdown complete")
}
