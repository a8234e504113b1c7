package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/fightprob/internal/agecurve"
	"github.com/yourusername/fightprob/internal/calibration"
	"github.com/yourusername/fightprob/internal/classifier"
	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/elo"
	"github.com/yourusername/fightprob/internal/features"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/persistence"
	"github.com/yourusername/fightprob/internal/repository"
	"github.com/yourusername/fightprob/internal/service"
)

// Minimal in-memory repositories for handler tests

type memFighters map[uuid.UUID]*models.Fighter

func (m memFighters) Create(ctx context.Context, f *models.Fighter) error { m[f.ID] = f; return nil }
func (m memFighters) GetByID(ctx context.Context, id uuid.UUID) (*models.Fighter, error) {
	if f, ok := m[id]; ok {
		return f, nil
	}
	return nil, models.ErrNotFound
}
func (m memFighters) GetByName(ctx context.Context, name string) (*models.Fighter, error) {
	return nil, models.ErrNotFound
}
func (m memFighters) GetByDivision(ctx context.Context, division string) ([]*models.Fighter, error) {
	return nil, nil
}
func (m memFighters) Update(ctx context.Context, f *models.Fighter) error { return nil }

type memBouts map[uuid.UUID]*models.Bout

func (m memBouts) Create(ctx context.Context, b *models.Bout) error { m[b.ID] = b; return nil }
func (m memBouts) GetByID(ctx context.Context, id uuid.UUID) (*models.Bout, error) {
	if b, ok := m[id]; ok {
		return b, nil
	}
	return nil, models.ErrNotFound
}
func (m memBouts) GetUpcoming(ctx context.Context, limit int) ([]*models.Bout, error) {
	out := make([]*models.Bout, 0)
	for _, b := range m {
		if !b.IsResolved() {
			out = append(out, b)
		}
	}
	return out, nil
}
func (m memBouts) GetResolvedByDivision(ctx context.Context, division string) ([]*models.Bout, error) {
	return nil, nil
}
func (m memBouts) GetResolvedSince(ctx context.Context, since time.Time) ([]*models.Bout, error) {
	return nil, nil
}
func (m memBouts) GetLastResolvedFor(ctx context.Context, fighterID uuid.UUID, before time.Time) (*models.Bout, error) {
	return nil, models.ErrNotFound
}
func (m memBouts) Update(ctx context.Context, b *models.Bout) error { return nil }

type memOdds map[uuid.UUID][]*models.OddsQuote

func (m memOdds) Insert(ctx context.Context, q *models.OddsQuote) error {
	m[q.BoutID] = append(m[q.BoutID], q)
	return nil
}
func (m memOdds) InsertBatch(ctx context.Context, qs []*models.OddsQuote) error { return nil }
func (m memOdds) GetByBoutID(ctx context.Context, boutID uuid.UUID) ([]*models.OddsQuote, error) {
	return m[boutID], nil
}
func (m memOdds) GetLatest(ctx context.Context, boutID, fighterID uuid.UUID) (*models.OddsQuote, error) {
	var best *models.OddsQuote
	for _, q := range m[boutID] {
		if q.FighterID == fighterID && (best == nil || q.Time.After(best.Time)) {
			best = q
		}
	}
	if best == nil {
		return nil, models.ErrNotFound
	}
	return best, nil
}

type memPredictions map[uuid.UUID]*models.PredictionRecord

func (m memPredictions) Upsert(ctx context.Context, p *models.PredictionRecord) error {
	m[p.BoutID] = p
	return nil
}
func (m memPredictions) GetByBoutID(ctx context.Context, boutID uuid.UUID) (*models.PredictionRecord, error) {
	if p, ok := m[boutID]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}
func (m memPredictions) GetRecent(ctx context.Context, since time.Time) ([]*models.PredictionRecord, error) {
	return nil, nil
}

type stubClassifier struct {
	probability float64
	err         error
}

func (s *stubClassifier) PredictProba(ctx context.Context, boutID uuid.UUID, feats []float64, version string) (*classifier.Score, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &classifier.Score{BoutID: boutID, Probability: s.probability, ModelVersion: version}, nil
}

func (s *stubClassifier) HealthCheck(ctx context.Context) error { return s.err }

type testEnv struct {
	server *Server
	stub   *stubClassifier
	bout   *models.Bout
	preds  memPredictions
	odds   memOdds
}

func newTestEnv(t *testing.T, calibrated bool) *testEnv {
	t.Helper()
	store, err := persistence.NewFileStore(t.TempDir())
	require.NoError(t, err)

	logger := logrus.New()
	engine := elo.NewEngine(elo.DefaultComponents, elo.DefaultKBase)
	ages := agecurve.NewRegistry(store, nil, logger)
	builder := features.NewBuilder(engine, ages, logger)

	eventDate := time.Now().UTC().AddDate(0, 1, 0)
	dob := eventDate.AddDate(-30, 0, 0)
	fighterA := &models.Fighter{ID: uuid.New(), Name: "A", Division: "MW", DateOfBirth: &dob}
	fighterB := &models.Fighter{ID: uuid.New(), Name: "B", Division: "MW", DateOfBirth: &dob}
	bout := &models.Bout{
		ID: uuid.New(), EventID: uuid.New(),
		FighterID: fighterA.ID, OpponentID: fighterB.ID,
		Division: "MW", ScheduledRounds: 3, EventDate: eventDate,
	}

	repos := &repository.Repositories{
		Fighters:    memFighters{fighterA.ID: fighterA, fighterB.ID: fighterB},
		Bouts:       memBouts{bout.ID: bout},
		Odds:        memOdds{},
		Predictions: memPredictions{},
	}

	modelCfg := config.ModelConfig{
		CalibrationMethod:     calibration.MethodIsotonic,
		CalibrationMinSamples: 3,
		ConfidenceDelta:       0.05,
		MinExpectedValue:      0.05,
		MaxKellyFraction:      0.25,
	}

	stub := &stubClassifier{probability: 0.65}
	predictor := service.NewPredictor(repos, builder, stub, store, modelCfg, "v1", elo.DefaultComponents, logger)

	if calibrated {
		c, err := calibration.Train(
			[]float64{0.1, 0.4, 0.6, 0.9},
			[]float64{0, 0, 1, 1},
			[]string{"MW", "MW", "MW", "MW"},
			calibration.MethodIsotonic, 3,
		)
		require.NoError(t, err)
		predictor.SetCalibrator(c)
	}

	srv := New(config.ServerConfig{
		Port: 0, ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5, ShutdownGraceSeconds: 1,
	}, modelCfg, predictor, repos, nil, stub, logger)
	srv.SetReady(true)

	return &testEnv{
		server: srv,
		stub:   stub,
		bout:   bout,
		preds:  repos.Predictions.(memPredictions),
		odds:   repos.Odds.(memOdds),
	}
}

func doPredict(t *testing.T, env *testEnv, boutID string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"bout_id": boutID})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	return rec
}

// TestPredictEndpoint tests the happy path
func TestPredictEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	rec := doPredict(t, env, env.bout.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var record models.PredictionRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, env.bout.ID, record.BoutID)
	assert.Greater(t, record.Probability, 0.0)
	assert.Less(t, record.Probability, 1.0)
	assert.LessOrEqual(t, record.ProbLow, record.Probability)
	assert.GreaterOrEqual(t, record.ProbHigh, record.Probability)
}

// TestPredictEndpointInvalidInput tests 422 mapping
func TestPredictEndpointInvalidInput(t *testing.T) {
	env := newTestEnv(t, true)

	rec := doPredict(t, env, "not-a-uuid")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doPredict(t, env, uuid.New().String())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// TestPredictEndpointMissingCalibrator tests 503 when artifacts are absent
func TestPredictEndpointMissingCalibrator(t *testing.T) {
	env := newTestEnv(t, false)
	rec := doPredict(t, env, env.bout.ID.String())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestPredictEndpointClassifierDown tests 503 when scoring fails
func TestPredictEndpointClassifierDown(t *testing.T) {
	env := newTestEnv(t, true)
	env.stub.err = classifier.ErrUnavailable

	rec := doPredict(t, env, env.bout.ID.String())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestPredictEndpointMethodNotAllowed tests verb handling
func TestPredictEndpointMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, true)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predict", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestGetPredictionEndpoint tests stored prediction retrieval
func TestGetPredictionEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	// Nothing stored yet
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/"+env.bout.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Predict stores the record, then retrieval succeeds
	require.Equal(t, http.StatusOK, doPredict(t, env, env.bout.ID.String()).Code)
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRecommendationsEndpoint tests EV ranking over upcoming bouts
func TestRecommendationsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	// Price the primary fighter at +120 (decimal 2.2); stub gives ~0.65
	env.odds.Insert(context.Background(), &models.OddsQuote{
		Time: time.Now().UTC(), BoutID: env.bout.ID,
		FighterID: env.bout.FighterID, Sportsbook: "bookx", American: 120,
	})
	env.odds.Insert(context.Background(), &models.OddsQuote{
		Time: time.Now().UTC(), BoutID: env.bout.ID,
		FighterID: env.bout.OpponentID, Sportsbook: "bookx", American: -140,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var recs []*models.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, env.bout.ID, recs[0].BoutID)
	assert.Greater(t, recs[0].ExpectedValue, 0.05)
	assert.Greater(t, recs[0].Kelly, 0.0)
	assert.LessOrEqual(t, recs[0].Kelly, 0.25)
}

// TestHealthAndReadyEndpoints tests the probe endpoints
func TestHealthAndReadyEndpoints(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.server.SetReady(false)
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestMetricsEndpoint tests the Prometheus exposition
func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, len(rec.Body.String()) > 0, fmt.Sprintf("empty metrics body: %q", rec.Body.String()))
}
