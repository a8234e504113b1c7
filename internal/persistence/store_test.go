package persistence

import (
	"errors"
	"testing"

	"github.com/yourusername/fightprob/internal/models"
)

type testArtifact struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	in := testArtifact{Name: "calibrator", Values: []float64{0.1, 0.2}}
	if err := store.Save("calibrator", in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var out testArtifact
	if err := store.Load("calibrator", &out); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out.Name != in.Name || len(out.Values) != 2 {
		t.Fatalf("loaded artifact %+v differs from saved %+v", out, in)
	}
	if !store.Exists("calibrator") {
		t.Fatalf("Exists should report saved artifact")
	}
}

func TestFileStoreMissingArtifact(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	var out testArtifact
	if err := store.Load("absent", &out); !errors.Is(err, models.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
	if store.Exists("absent") {
		t.Fatalf("Exists should be false for absent artifact")
	}
}
