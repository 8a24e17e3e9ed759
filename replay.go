package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/skywatch-data/threat.report/internal/monitoring"
	"github.com/skywatch-data/threat.report/internal/pipeline"
	"github.com/skywatch-data/threat.report/internal/store"
	"github.com/skywatch-data/threat.report/internal/track"
)

// frameRecord is one line of the detections JSONL file.
type frameRecord struct {
	Frame      int               `json:"frame"`
	Detections []detectionRecord `json:"detections"`
}

type detectionRecord struct {
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
	ClassID    int        `json:"class_id"`
}

// replayDetections streams a JSONL detections file through the pipeline one
// frame per line, persisting every assessment. Frames are processed in file
// order; the frame numbers in the file are advisory and logged when they
// disagree with the pipeline's own counter.
func replayDetections(ctx context.Context, path string, pipe *pipeline.Pipeline, db *store.Store) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open detections file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var frames, assessments int
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			monitoring.Logf("replay interrupted after %d frame(s)", frames)
			return nil
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec frameRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("failed to parse frame at line %d: %w", frames+1, err)
		}
		if rec.Frame != pipe.Frame() {
			monitoring.Logf("frame number %d in file, %d in pipeline", rec.Frame, pipe.Frame())
		}

		detections := make([]track.Detection, 0, len(rec.Detections))
		for _, d := range rec.Detections {
			detections = append(detections, track.Detection{
				BBox:       d.BBox,
				Confidence: d.Confidence,
				ClassID:    d.ClassID,
			})
		}

		result := pipe.ProcessFrame(detections)
		for _, a := range result.Assessments {
			if err := db.InsertAssessment(pipe.RunID(), a); err != nil {
				return fmt.Errorf("failed to persist assessment: %w", err)
			}
		}
		frames++
		assessments += len(result.Assessments)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read detections file: %w", err)
	}

	monitoring.Logf("replayed %d frame(s), recorded %d assessment(s) for run %s",
		frames, assessments, pipe.RunID())
	return nil
}
