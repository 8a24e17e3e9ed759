// Package pipeline orchestrates the per-frame flow: detections are
// associated into tracks, each track is projected to world coordinates and
// speed-estimated, then scored for threat. Processing is strictly sequential
// across frames; a Pipeline instance owns its tracker and estimator state and
// must have a single caller.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/skywatch-data/threat.report/internal/airdata"
	"github.com/skywatch-data/threat.report/internal/geom"
	"github.com/skywatch-data/threat.report/internal/speed"
	"github.com/skywatch-data/threat.report/internal/threat"
	"github.com/skywatch-data/threat.report/internal/track"
)

// Classifier supplies a classification label for a tracked object. The
// implementation may run a learned model over the image crop or map detector
// class ids through a table; the pipeline never knows which.
type Classifier interface {
	Classify(t track.Track) (label string, confidence float64)
}

// ClassTable is the default Classifier: a detector-class-id to label map.
type ClassTable map[int]string

// DefaultClassTable returns the default aircraft label table.
func DefaultClassTable() ClassTable {
	return ClassTable{
		0: "fighter",
		1: "airliner",
		2: "private_jet",
		3: "propeller",
		4: "drone",
		5: "unknown",
	}
}

// Classify maps the track's detector class id to a label, carrying the
// detection confidence through. Unknown ids label as "unknown" at half
// confidence.
func (ct ClassTable) Classify(t track.Track) (string, float64) {
	if label, ok := ct[t.ClassID]; ok {
		return label, t.Confidence
	}
	return "unknown", 0.5
}

// TrackAssessment is the pipeline's per-track, per-frame output record.
type TrackAssessment struct {
	Frame           int               `json:"frame"`
	TrackID         int64             `json:"id"`
	BBox            [4]float64        `json:"bbox"`
	Confidence      float64           `json:"confidence"`
	ClassLabel      string            `json:"class_label"`
	ClassConfidence float64           `json:"class_confidence"`
	WorldPos        geom.Point        `json:"world_pos_m"`
	SpeedMps        float64           `json:"speed_mps"`
	SpeedKt         float64           `json:"speed_kt"`
	TransponderID   string            `json:"transponder_id,omitempty"`
	AltitudeFt      *float64          `json:"altitude_ft,omitempty"`
	Threat          threat.Assessment `json:"threat"`
}

// FrameResult is the output of one ProcessFrame call. Tracks lists every
// track matched this frame; Assessments omits tracks that produced no usable
// world position this frame.
type FrameResult struct {
	Frame       int
	Tracks      []track.Track
	Assessments []TrackAssessment
}

// Pipeline wires the tracker, estimator, scorer and optional collaborators
// into the per-frame control flow.
type Pipeline struct {
	runID      string
	tracker    track.MultiObjectTracker
	estimator  *speed.Estimator
	scorer     *threat.Scorer
	classifier Classifier
	airdata    *airdata.Table // nil disables transponder correlation

	frame int
}

// New creates a Pipeline. classifier may be nil (the default class table is
// used); airTable may be nil (no transponder or altitude signal, which the
// scorer treats conservatively).
func New(tracker track.MultiObjectTracker, estimator *speed.Estimator, scorer *threat.Scorer, classifier Classifier, airTable *airdata.Table) *Pipeline {
	if classifier == nil {
		classifier = DefaultClassTable()
	}
	return &Pipeline{
		runID:      uuid.NewString(),
		tracker:    tracker,
		estimator:  estimator,
		scorer:     scorer,
		classifier: classifier,
		airdata:    airTable,
	}
}

// RunID returns the unique id of this pipeline instance.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Frame returns the number of frames processed so far.
func (p *Pipeline) Frame() int {
	return p.frame
}

// ProcessFrame runs one frame of detections through the pipeline. A track
// whose geometry transform yields no usable signal this frame is skipped in
// the assessments; the remaining tracks still process. An empty detection
// list ages all tracks and returns an empty result.
func (p *Pipeline) ProcessFrame(detections []track.Detection) FrameResult {
	frame := p.frame
	p.frame++

	tracks := p.tracker.Update(detections)
	timestamp := p.estimator.Timestamp(frame)

	result := FrameResult{
		Frame:       frame,
		Tracks:      tracks,
		Assessments: make([]TrackAssessment, 0, len(tracks)),
	}

	for _, tr := range tracks {
		centroid := geom.Point{X: tr.Centroid[0], Y: tr.Centroid[1]}
		sp := p.estimator.EstimateSpeed(tr.ID, centroid, tr.BBox, frame)
		if sp == nil {
			// No usable signal for this track this frame.
			continue
		}

		label, labelConf := p.classifier.Classify(tr)

		var transponderID string
		var altitudeFt *float64
		if m := p.airdata.MatchNearest(sp.WorldPos, timestamp); m != nil {
			transponderID = m.TransponderID
			altitudeFt = m.AltitudeFt
		}

		assessment := p.scorer.Assess(threat.Target{
			Position:       sp.WorldPos,
			SpeedKnots:     sp.SpeedKnots,
			Classification: label,
			TransponderID:  transponderID,
			AltitudeFt:     altitudeFt,
		})

		result.Assessments = append(result.Assessments, TrackAssessment{
			Frame:           frame,
			TrackID:         tr.ID,
			BBox:            tr.BBox,
			Confidence:      tr.Confidence,
			ClassLabel:      label,
			ClassConfidence: labelConf,
			WorldPos:        sp.WorldPos,
			SpeedMps:        sp.SpeedMps,
			SpeedKt:         sp.SpeedKnots,
			TransponderID:   transponderID,
			AltitudeFt:      altitudeFt,
			Threat:          assessment,
		})
	}

	return result
}

// ResetTrackHistory clears the speed history for one track id, for callers
// that decide a gap invalidates a track's motion state.
func (p *Pipeline) ResetTrackHistory(trackID int64) {
	p.estimator.ResetTrack(trackID)
}

// ResetAllHistory clears every track's speed history.
func (p *Pipeline) ResetAllHistory() {
	p.estimator.ResetAll()
}
