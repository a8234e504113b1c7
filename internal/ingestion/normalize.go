package ingestion

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/odds"
)

// ParseAmerican parses an American price string exactly. Providers send
// prices like "-110" or "+105" as strings; parsing through decimal avoids
// float artifacts before the value is stored.
func ParseAmerican(price string) (float64, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable american price %q", models.ErrInvalidInput, price)
	}
	if d.IsZero() {
		return 0, fmt.Errorf("%w: american price cannot be zero", models.ErrInvalidInput)
	}
	f, _ := d.Float64()
	return f, nil
}

// latestPerSide keeps only the freshest valid quote per fighter across
// the given quotes.
func latestPerSide(quotes []models.OddsQuote) map[uuid.UUID]models.OddsQuote {
	best := make(map[uuid.UUID]models.OddsQuote)
	for _, q := range quotes {
		if !q.Valid() {
			continue
		}
		if cur, ok := best[q.FighterID]; !ok || q.Time.After(cur.Time) {
			best[q.FighterID] = q
		}
	}
	return best
}

// BuildSnapshot collapses raw quotes for one bout into a market snapshot:
// freshest price per side, implied probabilities, and Shin fair prices.
// At least one quote per side is required.
func BuildSnapshot(boutID uuid.UUID, quotes []models.OddsQuote) (*models.MarketSnapshot, error) {
	sides := latestPerSide(quotes)
	if len(sides) < 2 {
		return nil, fmt.Errorf("%w: need quotes for both sides of bout %s", models.ErrInsufficientData, boutID)
	}

	fighterIDs := make([]uuid.UUID, 0, len(sides))
	var latest time.Time
	var book string
	for id, q := range sides {
		fighterIDs = append(fighterIDs, id)
		if q.Time.After(latest) {
			latest = q.Time
			book = q.Sportsbook
		}
	}
	// Deterministic side ordering
	for i := 0; i < len(fighterIDs); i++ {
		for j := i + 1; j < len(fighterIDs); j++ {
			if fighterIDs[j].String() < fighterIDs[i].String() {
				fighterIDs[i], fighterIDs[j] = fighterIDs[j], fighterIDs[i]
			}
		}
	}

	implied := make([]float64, len(fighterIDs))
	for i, id := range fighterIDs {
		p, err := odds.AmericanToImplied(sides[id].American)
		if err != nil {
			return nil, err
		}
		implied[i] = p
	}

	fair, z, err := odds.ShinAdjustment(implied)
	if err != nil {
		return nil, err
	}

	return &models.MarketSnapshot{
		Time:         latest,
		BoutID:       boutID,
		FighterIDs:   fighterIDs,
		Implied:      implied,
		Fair:         fair,
		Overround:    odds.Overround(implied),
		ShinZ:        z,
		QuoteCount:   len(quotes),
		SportsbookOf: book,
	}, nil
}

// BuildBookSnapshots builds one snapshot per sportsbook that quotes both
// sides of the bout, so callers can aggregate fair prices across books.
// When no single book covers both sides, it falls back to one snapshot
// collapsed across all books. Snapshots are ordered by sportsbook name.
func BuildBookSnapshots(boutID uuid.UUID, quotes []models.OddsQuote) ([]*models.MarketSnapshot, error) {
	byBook := make(map[string][]models.OddsQuote)
	for _, q := range quotes {
		byBook[q.Sportsbook] = append(byBook[q.Sportsbook], q)
	}

	books := make([]string, 0, len(byBook))
	for book := range byBook {
		books = append(books, book)
	}
	sort.Strings(books)

	snapshots := make([]*models.MarketSnapshot, 0, len(books))
	for _, book := range books {
		snapshot, err := BuildSnapshot(boutID, byBook[book])
		if err != nil {
			if errors.Is(err, models.ErrInsufficientData) {
				continue
			}
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if len(snapshots) > 0 {
		return snapshots, nil
	}

	snapshot, err := BuildSnapshot(boutID, quotes)
	if err != nil {
		return nil, err
	}
	return []*models.MarketSnapshot{snapshot}, nil
}
