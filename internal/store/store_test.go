package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/skywatch-data/threat.report/internal/geom"
	"github.com/skywatch-data/threat.report/internal/pipeline"
	"github.com/skywatch-data/threat.report/internal/threat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAssessment(frame int, trackID int64) pipeline.TrackAssessment {
	alt := 1200.0
	return pipeline.TrackAssessment{
		Frame:           frame,
		TrackID:         trackID,
		BBox:            [4]float64{10, 20, 50, 40},
		Confidence:      0.9,
		ClassLabel:      "fighter",
		ClassConfidence: 0.9,
		WorldPos:        geom.Point{X: 850, Y: 850},
		SpeedMps:        210,
		SpeedKt:         408.2,
		TransponderID:   "",
		AltitudeFt:      &alt,
		Threat: threat.Assessment{
			Score:   85,
			Level:   threat.LevelCritical,
			Reasons: []string{"inside_restricted_zone (Test Range)", "unknown_transponder"},
			Breakdown: map[string]int{
				threat.FactorZone:        40,
				threat.FactorTransponder: 25,
			},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateRun("run-1", "flights.jsonl", 1000); err != nil {
		t.Fatalf("create run: %v", err)
	}

	want := sampleAssessment(0, 1)
	if err := s.InsertAssessment("run-1", want); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ListAssessments("run-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 assessment, got %d", len(got))
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreNullAltitude(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateRun("run-1", "", 0); err != nil {
		t.Fatal(err)
	}
	a := sampleAssessment(0, 1)
	a.AltitudeFt = nil
	if err := s.InsertAssessment("run-1", a); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListAssessments("run-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].AltitudeFt != nil {
		t.Errorf("altitude should round-trip as nil, got %v", *got[0].AltitudeFt)
	}
}

func TestStoreListOrderAndLimit(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateRun("run-1", "", 0); err != nil {
		t.Fatal(err)
	}
	// Insert out of frame order.
	for _, frame := range []int{2, 0, 1} {
		if err := s.InsertAssessment("run-1", sampleAssessment(frame, 1)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListAssessments("run-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, a := range got {
		if a.Frame != i {
			t.Errorf("assessments out of frame order: index %d has frame %d", i, a.Frame)
		}
	}

	limited, err := s.ListAssessments("run-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("want 2 with limit, got %d", len(limited))
	}

	n, err := s.CountAssessments("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("want count 3, got %d", n)
	}
}

func TestStoreListRuns(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateRun("old", "a.jsonl", 100); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRun("new", "b.jsonl", 200); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("want 2 runs, got %d", len(runs))
	}
	// Most recent first.
	if runs[0].RunID != "new" || runs[1].RunID != "old" {
		t.Errorf("runs out of order: %+v", runs)
	}
}

func TestStoreDuplicateRunID(t *testing.T) {
	s := openTestStore(t)

	if err := s.CreateRun("run-1", "", 0); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateRun("run-1", "", 1); err == nil {
		t.Error("duplicate run id should fail")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	s := openTestStore(t)

	// Open already migrated; a second run must be a no-op.
	if err := s.MigrateUp(); err != nil {
		t.Fatalf("repeat migration failed: %v", err)
	}
	version, dirty, err := s.MigrateVersion()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if dirty {
		t.Error("schema should not be dirty")
	}
	if version == 0 {
		t.Error("schema version should be set after migration")
	}
}
