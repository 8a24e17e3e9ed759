// Package speed converts per-track image motion into world-plane speed
// estimates using either a calibrated homography or the pinhole fallback.
package speed

import (
	"sync"

	"github.com/skywatch-data/threat.report/internal/geom"
	"github.com/skywatch-data/threat.report/internal/units"
)

// maxHistory bounds the per-track position history. The sliding window keeps
// room for smoothing even though the speed law only reads the last two
// entries.
const maxHistory = 10

// Config holds configuration for the speed estimator.
type Config struct {
	FPS                  float64 // Frame cadence of the upstream feed
	FallbackObjectWidthM float64 // Known reference width for the pinhole fallback (metres)
	FallbackAltitudeM    float64 // Assumed altitude for monocular estimation (metres)
	CameraFocalLengthPx  float64 // Camera focal length in pixels
}

// DefaultConfig returns default speed estimation parameters.
func DefaultConfig() Config {
	return Config{
		FPS:                  25.0,
		FallbackObjectWidthM: 28.0,
		FallbackAltitudeM:    1000.0,
		CameraFocalLengthPx:  1000.0,
	}
}

// Result is one frame's speed estimate for a track.
type Result struct {
	SpeedMps   float64
	SpeedKnots float64
	WorldPos   geom.Point
}

// historyEntry pairs a timestamp in seconds with a world position.
type historyEntry struct {
	timestamp float64
	pos       geom.Point
}

// Estimator keeps a bounded world-position history per track id and derives
// speed from the latest two entries. It carries cross-frame mutable state:
// one pipeline instance must own one Estimator, and concurrent writers for
// the same track id must be serialized.
type Estimator struct {
	homography *geom.Homography // nil selects the pinhole fallback
	pinhole    geom.Pinhole
	frameTime  float64

	mu      sync.Mutex
	history map[int64][]historyEntry
}

// NewEstimator creates an Estimator. A nil homography selects the degraded
// pinhole fallback built from the config's reference width and focal length.
func NewEstimator(homography *geom.Homography, config Config) *Estimator {
	frameTime := 1.0
	if config.FPS > 0 {
		frameTime = 1.0 / config.FPS
	}
	return &Estimator{
		homography: homography,
		pinhole: geom.Pinhole{
			ReferenceWidthM: config.FallbackObjectWidthM,
			FocalLengthPx:   config.CameraFocalLengthPx,
		},
		frameTime: frameTime,
		history:   make(map[int64][]historyEntry),
	}
}

// UsingHomography reports whether the calibrated transform is in use.
func (e *Estimator) UsingHomography() bool {
	return e.homography != nil
}

// Timestamp returns the feed timestamp in seconds for a frame number.
func (e *Estimator) Timestamp(frameNumber int) float64 {
	return float64(frameNumber) * e.frameTime
}

// EstimateSpeed transforms a track's image centroid to world coordinates,
// appends it to the track's history and derives speed from the last two
// entries.
//
// Returns nil when the transform yields no usable signal this frame (for
// example a degenerate bounding-box width under the fallback). This is a
// normal outcome, not an error. A track's first observation returns zero
// speeds with the world position: seen, but no velocity yet. A non-positive
// elapsed time between the last two entries (duplicate or out-of-order frame
// numbers) also yields zero speed.
func (e *Estimator) EstimateSpeed(trackID int64, centroid geom.Point, bbox [4]float64, frameNumber int) *Result {
	timestamp := e.Timestamp(frameNumber)

	var worldPos geom.Point
	var ok bool
	if e.homography != nil {
		worldPos, ok = e.homography.ImageToWorld(centroid.X, centroid.Y)
	} else {
		worldPos, ok = e.pinhole.GroundPosition(centroid, bbox[2]-bbox[0])
	}
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	hist := append(e.history[trackID], historyEntry{timestamp: timestamp, pos: worldPos})
	if len(hist) > maxHistory {
		hist = hist[len(hist)-maxHistory:]
	}
	e.history[trackID] = hist

	if len(hist) < 2 {
		return &Result{SpeedMps: 0, SpeedKnots: 0, WorldPos: worldPos}
	}

	prev := hist[len(hist)-2]
	last := hist[len(hist)-1]

	var speedMps float64
	if dt := last.timestamp - prev.timestamp; dt > 0 {
		speedMps = geom.WorldDistance(prev.pos, last.pos) / dt
	}

	return &Result{
		SpeedMps:   speedMps,
		SpeedKnots: units.MpsToKnots(speedMps),
		WorldPos:   worldPos,
	}
}

// ResetTrack clears the history for one track id.
func (e *Estimator) ResetTrack(trackID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.history, trackID)
}

// ResetAll clears every track's history.
func (e *Estimator) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = make(map[int64][]historyEntry)
}

// HistoryLen returns the number of history entries retained for a track id.
func (e *Estimator) HistoryLen(trackID int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history[trackID])
}
