// Package track associates per-frame bounding-box detections into persistent
// tracks with stable integer identities.
package track

// Detection is a single-frame observation from the upstream detector: an
// axis-aligned bounding box in image pixels, a confidence in [0,1] and an
// optional detector class id.
type Detection struct {
	BBox       [4]float64 // x1, y1, x2, y2 in pixels
	Confidence float64
	ClassID    int
}

// Centroid returns the midpoint of the detection's bounding box.
func (d Detection) Centroid() [2]float64 {
	return [2]float64{
		(d.BBox[0] + d.BBox[2]) / 2,
		(d.BBox[1] + d.BBox[3]) / 2,
	}
}

// Track is a persistent identity across frames. IDs are monotonically
// assigned for the lifetime of a Tracker and never reused.
type Track struct {
	ID         int64
	BBox       [4]float64
	Confidence float64
	ClassID    int
	Centroid   [2]float64
}

// State represents the lifecycle state of a track.
type State string

const (
	// StateActive marks a track matched in the current frame.
	StateActive State = "active"
	// StateLost marks a track that went unmatched for at least one frame but
	// is retained for possible re-association.
	StateLost State = "lost"
)
