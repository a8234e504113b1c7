// Package main provides the model refresh CLI: replay ratings, refit age
// curves and retrain calibration, once or on a schedule.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/fightprob/internal/agecurve"
	"github.com/yourusername/fightprob/internal/classifier"
	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/database"
	"github.com/yourusername/fightprob/internal/elo"
	"github.com/yourusername/fightprob/internal/features"
	"github.com/yourusername/fightprob/internal/logger"
	"github.com/yourusername/fightprob/internal/persistence"
	"github.com/yourusername/fightprob/internal/repository"
	"github.com/yourusername/fightprob/internal/scheduler"
	"github.com/yourusername/fightprob/internal/service"
)

var (
	configFile string
	daemon     bool

	appLog    *logrus.Logger
	cfg       *config.Config
	db        *database.DB
	refresher *service.Refresher
)

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Rebuild model artifacts from resolved bouts",
		Long: `Replays all resolved bouts through the component rating engine,
refits the per-division age curves, retrains the probability calibrator
and persists the resulting artifacts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return fmt.Errorf("failed to set up dependencies: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer db.Close()
			if daemon {
				return runDaemon()
			}
			return refresher.Run(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&daemon, "daemon", false, "Keep running and refresh on the configured cron schedule")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		if err := config.LoadSecretsFromAWS(cfg, os.Getenv("AWS_REGION"), os.Getenv("AWS_SECRET_NAME")); err != nil {
			return err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)

	db, err = database.NewDB(context.Background(), &cfg.Database)
	if err != nil {
		return err
	}
	repos := repository.NewRepositories(db)

	store, err := persistence.NewFileStore(cfg.Model.ArtifactDir)
	if err != nil {
		return err
	}

	engine := elo.NewEngine(cfg.Elo.Components, cfg.Elo.KBase)
	ages := agecurve.NewRegistry(store, service.AgeHistoryProvider(repos.Bouts, repos.Fighters), appLog)
	builder := features.NewBuilder(engine, ages, appLog)
	cls := classifier.NewCachedClient(&cfg.Classifier, appLog)

	predictor := service.NewPredictor(
		repos, builder, cls, store,
		cfg.Model, cfg.Classifier.ModelVersion, cfg.Elo.Components, appLog,
	)
	refresher = service.NewRefresher(
		repos, engine, ages, cls, predictor, store,
		cfg.Model, cfg.Elo, cfg.Classifier.ModelVersion, appLog,
	)
	return nil
}

func runDaemon() error {
	sched := scheduler.NewScheduler(refresher, nil, appLog)
	if err := sched.ScheduleRefresh(cfg.Jobs.DailyRefreshCron); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	logger.WithComponent(appLog, "refresh").
		WithField("cron", cfg.Jobs.DailyRefreshCron).Info("Refresh daemon running")
	<-rootCmd.Context().Done()
	return nil
}
