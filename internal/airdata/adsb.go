// Package airdata correlates tracked world positions with ADS-B transponder
// reports. The table is loaded once from CSV and queried read-only with a
// spatio-temporal nearest-record match.
package airdata

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/skywatch-data/threat.report/internal/geom"
)

// Config holds the matching tolerances.
type Config struct {
	MatchRadiusM float64 // Maximum distance between track and report (metres)
	MatchTimeS   float64 // Maximum timestamp difference (seconds)
}

// DefaultConfig returns default matching tolerances.
func DefaultConfig() Config {
	return Config{
		MatchRadiusM: 50.0,
		MatchTimeS:   2.0,
	}
}

// Record is one ADS-B report.
type Record struct {
	Timestamp     float64 // Seconds
	TransponderID string
	X             float64 // World metres
	Y             float64
	AltitudeFt    *float64 // nil when the column is absent or empty
	SpeedKt       *float64
}

// Match is the result of a successful correlation.
type Match struct {
	TransponderID string
	DistanceM     float64
	TimeDiffS     float64
	AltitudeFt    *float64
	SpeedKt       *float64
}

// Table is an immutable ADS-B report table.
type Table struct {
	records []Record
	config  Config
}

var requiredColumns = []string{"timestamp", "transponder_id", "x", "y"}

// LoadTable reads ADS-B reports from CSV. Required columns: timestamp,
// transponder_id, x, y. Optional columns: altitude, speed. A missing
// required column fails the load.
func LoadTable(path string, config Config) (*Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open ADS-B file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ADS-B CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ADS-B file is empty: %s", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("ADS-B file missing required column %q", name)
		}
	}
	altCol, hasAlt := cols["altitude"]
	speedCol, hasSpeed := cols["speed"]

	t := &Table{config: config, records: make([]Record, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		ts, err := strconv.ParseFloat(strings.TrimSpace(row[cols["timestamp"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("ADS-B row %d: bad timestamp: %w", i+2, err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(row[cols["x"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("ADS-B row %d: bad x: %w", i+2, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(row[cols["y"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("ADS-B row %d: bad y: %w", i+2, err)
		}

		rec := Record{
			Timestamp:     ts,
			TransponderID: strings.TrimSpace(row[cols["transponder_id"]]),
			X:             x,
			Y:             y,
		}
		if hasAlt && altCol < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[altCol]), 64); err == nil {
				rec.AltitudeFt = &v
			}
		}
		if hasSpeed && speedCol < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[speedCol]), 64); err == nil {
				rec.SpeedKt = &v
			}
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

// NewTable builds a Table from records directly.
func NewTable(records []Record, config Config) *Table {
	return &Table{records: records, config: config}
}

// Len returns the number of loaded records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// MatchNearest returns the nearest record within the configured radius and
// time window of the given position and timestamp, or nil when no record
// qualifies. A nil table never matches.
func (t *Table) MatchNearest(pos geom.Point, timestamp float64) *Match {
	if t == nil {
		return nil
	}

	bestDist := math.MaxFloat64
	bestIdx := -1
	for i := range t.records {
		rec := &t.records[i]
		if math.Abs(rec.Timestamp-timestamp) > t.config.MatchTimeS {
			continue
		}
		dist := geom.WorldDistance(pos, geom.Point{X: rec.X, Y: rec.Y})
		if dist > t.config.MatchRadiusM {
			continue
		}
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil
	}

	rec := &t.records[bestIdx]
	return &Match{
		TransponderID: rec.TransponderID,
		DistanceM:     bestDist,
		TimeDiffS:     math.Abs(rec.Timestamp - timestamp),
		AltitudeFt:    rec.AltitudeFt,
		SpeedKt:       rec.SpeedKt,
	}
}
