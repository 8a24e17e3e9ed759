package speed

import (
	"math"
	"testing"

	"github.com/skywatch-data/threat.report/internal/geom"
	"github.com/skywatch-data/threat.report/internal/units"
)

func identityHomography() *geom.Homography {
	return geom.NewHomography([3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// box returns a 40px-wide bounding box centred on (x, y).
func box(x, y float64) [4]float64 {
	return [4]float64{x - 20, y - 10, x + 20, y + 10}
}

func TestFirstObservationHasZeroSpeed(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())

	r := e.EstimateSpeed(1, geom.Point{X: 100, Y: 50}, box(100, 50), 0)
	if r == nil {
		t.Fatal("first observation should yield a result, not nil")
	}
	if r.SpeedMps != 0 || r.SpeedKnots != 0 {
		t.Errorf("first observation should have zero speed, got %v m/s, %v kt", r.SpeedMps, r.SpeedKnots)
	}
	if r.WorldPos.X != 100 || r.WorldPos.Y != 50 {
		t.Errorf("world position lost: got %+v", r.WorldPos)
	}
}

func TestSpeedFromConsecutiveFrames(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig()) // 25 fps

	e.EstimateSpeed(1, geom.Point{X: 0, Y: 0}, box(0, 0), 0)
	r := e.EstimateSpeed(1, geom.Point{X: 100, Y: 0}, box(100, 0), 1)
	if r == nil {
		t.Fatal("expected a result")
	}

	// 100m in 0.04s.
	if !almostEqual(r.SpeedMps, 2500, 1e-9) {
		t.Errorf("got %v m/s, want 2500", r.SpeedMps)
	}
	if !almostEqual(r.SpeedKnots, 2500*units.KnotsPerMps, 1e-6) {
		t.Errorf("got %v kt, want %v", r.SpeedKnots, 2500*units.KnotsPerMps)
	}
}

func TestStationaryTarget(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())

	e.EstimateSpeed(7, geom.Point{X: 42, Y: 42}, box(42, 42), 0)
	r := e.EstimateSpeed(7, geom.Point{X: 42, Y: 42}, box(42, 42), 1)
	if r == nil || r.SpeedMps != 0 {
		t.Errorf("stationary target should report 0 m/s, got %+v", r)
	}
}

func TestDuplicateFrameNumberYieldsZeroSpeed(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())

	e.EstimateSpeed(1, geom.Point{X: 0, Y: 0}, box(0, 0), 5)
	r := e.EstimateSpeed(1, geom.Point{X: 50, Y: 0}, box(50, 0), 5)
	if r == nil {
		t.Fatal("expected a result")
	}
	if r.SpeedMps != 0 || r.SpeedKnots != 0 {
		t.Errorf("zero elapsed time should yield zero speed, got %+v", r)
	}
}

func TestSpeedUsesLastTwoEntriesOnly(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())

	// A long run at 25 m/frame, then a stop: speed reflects only the latest
	// pair, not the run's average.
	for f := 0; f < 5; f++ {
		e.EstimateSpeed(1, geom.Point{X: 25 * float64(f), Y: 0}, box(25*float64(f), 0), f)
	}
	r := e.EstimateSpeed(1, geom.Point{X: 100, Y: 0}, box(100, 0), 5)
	if r == nil || r.SpeedMps != 0 {
		t.Errorf("speed should come from the last two entries, got %+v", r)
	}
}

func TestHistoryCapped(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())

	for f := 0; f < 25; f++ {
		e.EstimateSpeed(1, geom.Point{X: float64(f), Y: 0}, box(float64(f), 0), f)
	}
	if got := e.HistoryLen(1); got != maxHistory {
		t.Errorf("history should be capped at %d, got %d", maxHistory, got)
	}
}

func TestIndependentTrackHistories(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())

	e.EstimateSpeed(1, geom.Point{X: 0, Y: 0}, box(0, 0), 0)
	r := e.EstimateSpeed(2, geom.Point{X: 500, Y: 0}, box(500, 0), 1)
	if r == nil || r.SpeedMps != 0 {
		t.Errorf("a different track's first observation should have zero speed, got %+v", r)
	}
}

func TestResetTrack(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())

	e.EstimateSpeed(1, geom.Point{X: 0, Y: 0}, box(0, 0), 0)
	e.EstimateSpeed(2, geom.Point{X: 0, Y: 0}, box(0, 0), 0)
	e.ResetTrack(1)

	if e.HistoryLen(1) != 0 {
		t.Error("reset track should have no history")
	}
	if e.HistoryLen(2) != 1 {
		t.Error("other tracks should be unaffected")
	}

	// After the reset, the next observation counts as the first again.
	r := e.EstimateSpeed(1, geom.Point{X: 1000, Y: 0}, box(1000, 0), 1)
	if r == nil || r.SpeedMps != 0 {
		t.Errorf("post-reset observation should have zero speed, got %+v", r)
	}
}

func TestResetAll(t *testing.T) {
	e := NewEstimator(identityHomography(), DefaultConfig())
	e.EstimateSpeed(1, geom.Point{X: 0, Y: 0}, box(0, 0), 0)
	e.EstimateSpeed(2, geom.Point{X: 0, Y: 0}, box(0, 0), 0)
	e.ResetAll()
	if e.HistoryLen(1) != 0 || e.HistoryLen(2) != 0 {
		t.Error("all histories should be cleared")
	}
}

func TestPinholeFallback(t *testing.T) {
	e := NewEstimator(nil, DefaultConfig())
	if e.UsingHomography() {
		t.Error("nil homography should select the pinhole fallback")
	}

	// 28px-wide box under the default 28m reference at f=1000px sits at
	// 1000m, scale 1: world equals image coordinates.
	r := e.EstimateSpeed(1, geom.Point{X: 100, Y: 50}, [4]float64{86, 40, 114, 60}, 0)
	if r == nil {
		t.Fatal("expected a result")
	}
	if !almostEqual(r.WorldPos.X, 100, 1e-9) || !almostEqual(r.WorldPos.Y, 50, 1e-9) {
		t.Errorf("got %+v, want (100, 50)", r.WorldPos)
	}
}

func TestPinholeDegenerateBoxSkipsFrame(t *testing.T) {
	e := NewEstimator(nil, DefaultConfig())

	r := e.EstimateSpeed(1, geom.Point{X: 100, Y: 50}, [4]float64{100, 40, 100, 60}, 0)
	if r != nil {
		t.Errorf("zero-width box should yield nil, got %+v", r)
	}
	if e.HistoryLen(1) != 0 {
		t.Error("a skipped frame should not enter the history")
	}
}

func TestTimestamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 10
	e := NewEstimator(nil, cfg)
	if got := e.Timestamp(30); !almostEqual(got, 3.0, 1e-12) {
		t.Errorf("got %v, want 3.0", got)
	}

	// Non-positive FPS falls back to one second per frame.
	cfg.FPS = 0
	e = NewEstimator(nil, cfg)
	if got := e.Timestamp(7); got != 7 {
		t.Errorf("got %v, want 7", got)
	}
}
