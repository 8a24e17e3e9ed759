package track

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Method selects the association criterion used to match detections to
// existing tracks. The variant set is fixed; selection happens once at
// construction.
type Method int

const (
	// MethodCentroid gates candidate pairs by Euclidean centroid distance in
	// pixels against MaxDistance.
	MethodCentroid Method = iota
	// MethodIoU gates candidate pairs by bounding-box overlap against
	// MatchThreshold.
	MethodIoU
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case MethodCentroid:
		return "centroid"
	case MethodIoU:
		return "iou"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a configuration string to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "centroid":
		return MethodCentroid, nil
	case "iou":
		return MethodIoU, nil
	default:
		return 0, fmt.Errorf("unknown tracker method %q (valid: centroid, iou)", s)
	}
}

// Config holds configuration parameters for the tracker.
type Config struct {
	Method         Method  // Association criterion
	MaxDistance    float64 // Maximum centroid distance for matching (pixels)
	TrackBuffer    int     // Consecutive unmatched frames tolerated before removal
	MatchThreshold float64 // Minimum IoU for matching
}

// DefaultConfig returns default tracker configuration.
func DefaultConfig() Config {
	return Config{
		Method:         MethodIoU,
		MaxDistance:    100.0,
		TrackBuffer:    30,
		MatchThreshold: 0.8,
	}
}

// Validate checks that the configuration values are valid.
func (c Config) Validate() error {
	if c.Method != MethodCentroid && c.Method != MethodIoU {
		return fmt.Errorf("invalid tracker method %d", int(c.Method))
	}
	if c.MaxDistance <= 0 {
		return fmt.Errorf("max_distance must be positive, got %v", c.MaxDistance)
	}
	if c.TrackBuffer < 0 {
		return fmt.Errorf("track_buffer must be non-negative, got %d", c.TrackBuffer)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be in [0,1], got %v", c.MatchThreshold)
	}
	return nil
}

// MultiObjectTracker abstracts the tracking implementation so pipelines can
// swap association algorithms without touching the per-frame loop.
type MultiObjectTracker interface {
	// Update processes one frame of detections and returns the tracks
	// matched (or created) in that frame.
	Update(detections []Detection) []Track
}

// entry is the tracker's internal per-track state.
type entry struct {
	id         int64
	bbox       [4]float64
	confidence float64
	classID    int

	// age counts consecutive unmatched frames; 0 means matched this frame.
	age int
}

func (e *entry) state() State {
	if e.age == 0 {
		return StateActive
	}
	return StateLost
}

func (e *entry) centroid() [2]float64 {
	return [2]float64{
		(e.bbox[0] + e.bbox[2]) / 2,
		(e.bbox[1] + e.bbox[3]) / 2,
	}
}

// Tracker matches per-frame detections against a table of live tracks. Each
// call to Update mutates internal state; a Tracker instance must have a
// single caller (one pipeline) and is not safe for concurrent Update calls.
type Tracker struct {
	config Config

	tracks map[int64]*entry
	nextID int64

	mu sync.Mutex
}

// Verify at compile time that *Tracker implements MultiObjectTracker.
var _ MultiObjectTracker = (*Tracker)(nil)

// New creates a Tracker with the given configuration.
func New(config Config) (*Tracker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}
	return &Tracker{
		config: config,
		tracks: make(map[int64]*entry),
		nextID: 1,
	}, nil
}

// Update processes one frame of detections.
//
// Detections are associated to existing active and lost tracks by the
// configured criterion using optimal assignment. Unmatched tracks age by one
// frame and are removed once their age exceeds the track buffer; unmatched
// detections spawn new tracks with freshly allocated ids. The returned slice
// contains every track matched or created this frame, ordered by ascending
// id. An empty input ages all tracks and returns an empty slice.
func (t *Tracker) Update(detections []Detection) []Track {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Deterministic candidate ordering: detections by descending confidence
	// (stable on input order), tracks by ascending (age, id). Equal-cost
	// assignments then resolve toward high-confidence detections and
	// recently-active tracks.
	detOrder := make([]int, len(detections))
	for i := range detOrder {
		detOrder[i] = i
	}
	sort.SliceStable(detOrder, func(a, b int) bool {
		return detections[detOrder[a]].Confidence > detections[detOrder[b]].Confidence
	})

	candidates := make([]*entry, 0, len(t.tracks))
	for _, e := range t.tracks {
		candidates = append(candidates, e)
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].age != candidates[b].age {
			return candidates[a].age < candidates[b].age
		}
		return candidates[a].id < candidates[b].id
	})

	matchedTracks := make(map[int64]bool, len(candidates))
	matchedDets := make([]bool, len(detections))

	if len(detections) > 0 && len(candidates) > 0 {
		cost := make([][]float64, len(detOrder))
		for row, di := range detOrder {
			cost[row] = make([]float64, len(candidates))
			for col, e := range candidates {
				cost[row][col] = t.associationCost(detections[di], e)
			}
		}

		for row, col := range hungarianAssign(cost) {
			if col < 0 {
				continue
			}
			di := detOrder[row]
			e := candidates[col]

			d := detections[di]
			e.bbox = d.BBox
			e.confidence = d.Confidence
			e.classID = d.ClassID
			e.age = 0

			matchedTracks[e.id] = true
			matchedDets[di] = true
		}
	}

	// Age unmatched tracks; evict those past the buffer.
	for id, e := range t.tracks {
		if matchedTracks[id] {
			continue
		}
		e.age++
		if e.age > t.config.TrackBuffer {
			delete(t.tracks, id)
		}
	}

	// Spawn new tracks from unmatched detections.
	for di, d := range detections {
		if matchedDets[di] {
			continue
		}
		e := &entry{
			id:         t.nextID,
			bbox:       d.BBox,
			confidence: d.Confidence,
			classID:    d.ClassID,
			age:        0,
		}
		t.nextID++
		t.tracks[e.id] = e
		matchedTracks[e.id] = true
	}

	// Output: active tracks only, ascending id for reproducible output.
	out := make([]Track, 0, len(matchedTracks))
	for _, e := range t.tracks {
		if e.age != 0 {
			continue
		}
		out = append(out, Track{
			ID:         e.id,
			BBox:       e.bbox,
			Confidence: e.confidence,
			ClassID:    e.classID,
			Centroid:   e.centroid(),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// associationCost returns the cost of pairing a detection with a track, or
// assignInf when the pair fails the gating criterion.
func (t *Tracker) associationCost(d Detection, e *entry) float64 {
	switch t.config.Method {
	case MethodIoU:
		overlap := IoU(d.BBox, e.bbox)
		if overlap < t.config.MatchThreshold {
			return assignInf
		}
		return 1 - overlap
	default: // MethodCentroid
		dc := d.Centroid()
		ec := e.centroid()
		dist := math.Hypot(dc[0]-ec[0], dc[1]-ec[1])
		if dist > t.config.MaxDistance {
			return assignInf
		}
		return dist
	}
}

// Count returns the number of live tracks (active and lost) retained
// internally.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tracks)
}

// IoU returns the intersection-over-union of two axis-aligned boxes given as
// [x1, y1, x2, y2]. Degenerate boxes yield 0.
func IoU(a, b [4]float64) float64 {
	ix1 := math.Max(a[0], b[0])
	iy1 := math.Max(a[1], b[1])
	ix2 := math.Min(a[2], b[2])
	iy2 := math.Min(a[3], b[3])

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := iw * ih
	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
