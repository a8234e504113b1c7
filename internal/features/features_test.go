package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/fightprob/internal/agecurve"
	"github.com/yourusername/fightprob/internal/elo"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/persistence"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	store, err := persistence.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return NewBuilder(elo.NewEngine(elo.DefaultComponents, elo.DefaultKBase), agecurve.NewRegistry(store, nil, nil), nil)
}

func testInput() Input {
	eventDate := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	dobA := eventDate.AddDate(-30, 0, 0)
	dobB := eventDate.AddDate(-27, 0, 0)
	fighter := &models.Fighter{ID: uuid.New(), Name: "A", Division: "LW", DateOfBirth: &dobA}
	opponent := &models.Fighter{ID: uuid.New(), Name: "B", Division: "LW", DateOfBirth: &dobB}
	bout := &models.Bout{
		ID:              uuid.New(),
		EventID:         uuid.New(),
		FighterID:       fighter.ID,
		OpponentID:      opponent.ID,
		Division:        "LW",
		ScheduledRounds: 5,
		EventDate:       eventDate,
	}
	return Input{Bout: bout, Fighter: fighter, Opponent: opponent}
}

func TestBuildMirroredComponents(t *testing.T) {
	b := testBuilder(t)
	got, err := b.Build(testInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, c := range elo.DefaultComponents {
		if got["fighter_"+c] != elo.DefaultRating {
			t.Errorf("fighter_%s = %v, want %v", c, got["fighter_"+c], elo.DefaultRating)
		}
		if got["opponent_"+c] != elo.DefaultRating {
			t.Errorf("opponent_%s = %v, want %v", c, got["opponent_"+c], elo.DefaultRating)
		}
	}
}

func TestBuildAges(t *testing.T) {
	b := testBuilder(t)
	got, err := b.Build(testInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if math.Abs(got["fighter_age"]-30) > 0.01 {
		t.Errorf("fighter_age = %v, want ~30", got["fighter_age"])
	}
	if math.Abs(got["age_diff"]-(got["fighter_age"]-got["opponent_age"])) > 1e-12 {
		t.Errorf("age_diff inconsistent: %v", got["age_diff"])
	}
	if math.Abs(got["fighter_age_effect"]) > 0.5 || math.Abs(got["opponent_age_effect"]) > 0.5 {
		t.Errorf("age effects out of bounds: %v, %v", got["fighter_age_effect"], got["opponent_age_effect"])
	}
}

func TestBuildMainEventAndRounds(t *testing.T) {
	b := testBuilder(t)
	in := testInput()
	got, err := b.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got["scheduled_rounds"] != 5 || got["is_main_event"] != 1 {
		t.Errorf("rounds/main = %v/%v, want 5/1", got["scheduled_rounds"], got["is_main_event"])
	}

	in.Bout.ScheduledRounds = 3
	got, err = b.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got["is_main_event"] != 0 {
		t.Errorf("is_main_event = %v, want 0", got["is_main_event"])
	}
}

func TestBuildActivityGap(t *testing.T) {
	b := testBuilder(t)
	in := testInput()

	got, err := b.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got["fighter_activity_gap_days"] != DefaultActivityGapDays {
		t.Errorf("gap = %v, want default %v", got["fighter_activity_gap_days"], DefaultActivityGapDays)
	}

	last := in.Bout.EventDate.AddDate(0, 0, -90)
	in.FighterLastBout = &last
	got, err = b.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if math.Abs(got["fighter_activity_gap_days"]-90) > 1e-9 {
		t.Errorf("gap = %v, want 90", got["fighter_activity_gap_days"])
	}
}

func TestBuildMarketProbMedian(t *testing.T) {
	b := testBuilder(t)
	in := testInput()

	got, err := b.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got["market_prob"] != DefaultMarketProb {
		t.Errorf("market_prob = %v, want fallback %v", got["market_prob"], DefaultMarketProb)
	}

	mk := func(fair float64) *models.MarketSnapshot {
		return &models.MarketSnapshot{
			BoutID:     in.Bout.ID,
			FighterIDs: []uuid.UUID{in.Bout.FighterID, in.Bout.OpponentID},
			Fair:       []float64{fair, 1 - fair},
		}
	}
	in.Markets = []*models.MarketSnapshot{mk(0.52), mk(0.58), mk(0.55)}
	got, err = b.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if math.Abs(got["market_prob"]-0.55) > 1e-12 {
		t.Errorf("market_prob = %v, want median 0.55", got["market_prob"])
	}
}

func TestBuildRejectsMismatchedFighters(t *testing.T) {
	b := testBuilder(t)
	in := testInput()
	in.Fighter = &models.Fighter{ID: uuid.New(), Name: "C", Division: "LW"}
	if _, err := b.Build(in); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNamesAndFlattenStableOrder(t *testing.T) {
	names := Names(elo.DefaultComponents)
	want := 2*len(elo.DefaultComponents) + 10
	if len(names) != want {
		t.Fatalf("len(names) = %d, want %d", len(names), want)
	}
	if names[0] != "fighter_striking" || names[len(names)-1] != "market_prob" {
		t.Fatalf("unexpected ordering: first=%s last=%s", names[0], names[len(names)-1])
	}

	b := testBuilder(t)
	got, err := b.Build(testInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	flat := Flatten(got, names)
	if len(flat) != len(names) {
		t.Fatalf("len(flat) = %d, want %d", len(flat), len(names))
	}
	if flat[len(flat)-1] != got["market_prob"] {
		t.Errorf("flatten order broken: last = %v", flat[len(flat)-1])
	}
}
