// Package main provides the backtest CLI: evaluates stored predictions
// against resolved outcomes and market prices.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/database"
	"github.com/yourusername/fightprob/internal/evaluation"
	"github.com/yourusername/fightprob/internal/logger"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/odds"
	"github.com/yourusername/fightprob/internal/repository"
)

type backtestResult struct {
	Overall     *evaluation.Report            `json:"overall"`
	PerDivision map[string]*evaluation.Report `json:"per_division"`
	Reliability []evaluation.ReliabilityBin   `json:"reliability"`
	ROI         *float64                      `json:"roi,omitempty"`
	PricedBets  int                           `json:"priced_bets"`
	Window      string                        `json:"window"`
	GeneratedAt time.Time                     `json:"generated_at"`
}

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		days       = flag.Int("days", 365, "Evaluate predictions made in the last N days")
		output     = flag.String("output", "", "Write the report to this file instead of stdout")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	ctx := context.Background()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	repos := repository.NewRepositories(db)

	since := time.Now().UTC().AddDate(0, 0, -*days)
	result, err := run(ctx, repos, since, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Backtest failed")
	}
	result.Window = fmt.Sprintf("last %d days", *days)
	result.GeneratedAt = time.Now().UTC()

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		appLog.WithError(err).Fatal("Failed to encode report")
	}
	if *output != "" {
		if err := os.WriteFile(*output, encoded, 0o644); err != nil {
			appLog.WithError(err).Fatal("Failed to write report")
		}
		appLog.WithField("path", *output).Info("Backtest report written")
		return
	}
	fmt.Println(string(encoded))
}

// run pairs stored predictions with resolved outcomes. Predictions whose
// bouts are still unresolved are skipped; priced predictions additionally
// feed the ROI estimate.
func run(ctx context.Context, repos *repository.Repositories, since time.Time, appLog *logrus.Logger) (*backtestResult, error) {
	predictions, err := repos.Predictions.GetRecent(ctx, since)
	if err != nil {
		return nil, err
	}

	var (
		outcomes      []float64
		probabilities []float64
		divisions     []string
		betOutcomes   []float64
		betProbs      []float64
		betPrices     []float64
	)

	skipped := 0
	for _, p := range predictions {
		bout, err := repos.Bouts.GetByID(ctx, p.BoutID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				skipped++
				continue
			}
			return nil, err
		}
		if !bout.IsResolved() || bout.Result() == 0.5 {
			skipped++
			continue
		}

		outcomes = append(outcomes, bout.Result())
		probabilities = append(probabilities, p.Probability)
		divisions = append(divisions, p.Division)

		quote, err := repos.Odds.GetLatest(ctx, p.BoutID, p.FighterID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return nil, err
		}
		price, err := odds.AmericanToDecimal(quote.American)
		if err != nil {
			continue
		}
		betOutcomes = append(betOutcomes, bout.Result())
		betProbs = append(betProbs, p.Probability)
		betPrices = append(betPrices, price)
	}

	if len(outcomes) == 0 {
		return nil, fmt.Errorf("%w: no resolved predictions in the window", models.ErrInsufficientData)
	}
	appLog.WithFields(logrus.Fields{
		"evaluated": len(outcomes),
		"skipped":   skipped,
		"priced":    len(betPrices),
	}).Info("Evaluating stored predictions")

	overall, err := evaluation.Evaluate(outcomes, probabilities)
	if err != nil {
		return nil, err
	}
	perDivision, err := evaluation.PerDivision(outcomes, probabilities, divisions)
	if err != nil {
		return nil, err
	}
	reliability, err := evaluation.ReliabilityBins(outcomes, probabilities, evaluation.DefaultBins)
	if err != nil {
		return nil, err
	}

	result := &backtestResult{
		Overall:     overall,
		PerDivision: perDivision,
		Reliability: reliability,
		PricedBets:  len(betPrices),
	}
	if len(betPrices) > 0 {
		roi, err := evaluation.ROI(betOutcomes, betProbs, betPrices)
		if err != nil {
			return nil, err
		}
		result.ROI = &roi
	}
	return result, nil
}
