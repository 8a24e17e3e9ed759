// Package store persists pipeline runs and per-frame track assessments to
// sqlite. Persistence is a collaborator of the core, not core state: the
// tracker and estimator never read from it.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/skywatch-data/threat.report/internal/pipeline"
	"github.com/skywatch-data/threat.report/internal/threat"
)

// Store wraps the sqlite handle.
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and runs
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Run is one recorded pipeline run.
type Run struct {
	RunID         string `json:"run_id"`
	Source        string `json:"source"`
	StartedUnixNs int64  `json:"started_unix_ns"`
}

// CreateRun records the start of a pipeline run.
func (s *Store) CreateRun(runID, source string, startedUnixNs int64) error {
	_, err := s.Exec(
		`INSERT INTO runs (run_id, source, started_unix_ns) VALUES (?, ?, ?)`,
		runID, source, startedUnixNs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns all recorded runs, most recent first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.Query(`SELECT run_id, source, started_unix_ns FROM runs ORDER BY started_unix_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Source, &r.StartedUnixNs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// InsertAssessment records one per-track, per-frame assessment.
func (s *Store) InsertAssessment(runID string, a pipeline.TrackAssessment) error {
	reasons, err := json.Marshal(a.Threat.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	breakdown, err := json.Marshal(a.Threat.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	var altitude sql.NullFloat64
	if a.AltitudeFt != nil {
		altitude = sql.NullFloat64{Float64: *a.AltitudeFt, Valid: true}
	}

	_, err = s.Exec(`
		INSERT INTO assessments (
			run_id, frame, track_id,
			bbox_x1, bbox_y1, bbox_x2, bbox_y2,
			confidence, class_label, class_confidence,
			world_x, world_y, speed_mps, speed_kt,
			transponder_id, altitude_ft,
			score, level, reasons, breakdown
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, a.Frame, a.TrackID,
		a.BBox[0], a.BBox[1], a.BBox[2], a.BBox[3],
		a.Confidence, a.ClassLabel, a.ClassConfidence,
		a.WorldPos.X, a.WorldPos.Y, a.SpeedMps, a.SpeedKt,
		a.TransponderID, altitude,
		a.Threat.Score, string(a.Threat.Level), string(reasons), string(breakdown),
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// ListAssessments returns a run's assessments in frame order, capped at
// limit (0 means no cap).
func (s *Store) ListAssessments(runID string, limit int) ([]pipeline.TrackAssessment, error) {
	query := `
		SELECT frame, track_id,
			bbox_x1, bbox_y1, bbox_x2, bbox_y2,
			confidence, class_label, class_confidence,
			world_x, world_y, speed_mps, speed_kt,
			transponder_id, altitude_ft,
			score, level, reasons, breakdown
		FROM assessments WHERE run_id = ? ORDER BY frame, track_id`
	args := []interface{}{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []pipeline.TrackAssessment
	for rows.Next() {
		var a pipeline.TrackAssessment
		var altitude sql.NullFloat64
		var level, reasons, breakdown string
		if err := rows.Scan(
			&a.Frame, &a.TrackID,
			&a.BBox[0], &a.BBox[1], &a.BBox[2], &a.BBox[3],
			&a.Confidence, &a.ClassLabel, &a.ClassConfidence,
			&a.WorldPos.X, &a.WorldPos.Y, &a.SpeedMps, &a.SpeedKt,
			&a.TransponderID, &altitude,
			&a.Threat.Score, &level, &reasons, &breakdown,
		); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if altitude.Valid {
			v := altitude.Float64
			a.AltitudeFt = &v
		}
		a.Threat.Level = threat.Level(level)
		if err := json.Unmarshal([]byte(reasons), &a.Threat.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons: %w", err)
		}
		if err := json.Unmarshal([]byte(breakdown), &a.Threat.Breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountAssessments returns the number of assessments recorded for a run.
func (s *Store) CountAssessments(runID string) (int, error) {
	var n int
	err := s.QueryRow(`SELECT COUNT(*) FROM assessments WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}
