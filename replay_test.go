package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skywatch-data/threat.report/internal/pipeline"
	"github.com/skywatch-data/threat.report/internal/speed"
	"github.com/skywatch-data/threat.report/internal/store"
	"github.com/skywatch-data/threat.report/internal/threat"
	"github.com/skywatch-data/threat.report/internal/track"
)

func newReplayPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	tracker, err := track.New(track.Config{
		Method: track.MethodCentroid, MaxDistance: 200, TrackBuffer: 5, MatchThreshold: 0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	estimator := speed.NewEstimator(nil, speed.DefaultConfig())
	scorer, err := threat.NewScorer(threat.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return pipeline.New(tracker, estimator, scorer, nil, nil)
}

func TestReplayDetections(t *testing.T) {
	dir := t.TempDir()

	detections := filepath.Join(dir, "detections.jsonl")
	body := `{"frame": 0, "detections": [{"bbox": [100, 100, 140, 120], "confidence": 0.9, "class_id": 1}]}
{"frame": 1, "detections": [{"bbox": [105, 100, 145, 120], "confidence": 0.9, "class_id": 1}]}

{"frame": 2, "detections": []}
`
	if err := os.WriteFile(detections, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	pipe := newReplayPipeline(t)
	if err := db.CreateRun(pipe.RunID(), detections, 0); err != nil {
		t.Fatal(err)
	}

	if err := replayDetections(context.Background(), detections, pipe, db); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	// Two frames with one detection each, one empty frame.
	n, err := db.CountAssessments(pipe.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("want 2 persisted assessments, got %d", n)
	}
	if pipe.Frame() != 3 {
		t.Errorf("want 3 processed frames, got %d", pipe.Frame())
	}
}

func TestReplayDetectionsBadLine(t *testing.T) {
	dir := t.TempDir()
	detections := filepath.Join(dir, "detections.jsonl")
	if err := os.WriteFile(detections, []byte("not json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := replayDetections(context.Background(), detections, newReplayPipeline(t), db); err == nil {
		t.Error("malformed line should fail the replay")
	}
}

func TestReplayDetectionsMissingFile(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := replayDetections(context.Background(), "nope.jsonl", newReplayPipeline(t), db); err == nil {
		t.Error("missing file should fail the replay")
	}
}
