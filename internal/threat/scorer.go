// Package threat scores tracked aerial objects with a transparent, auditable
// weighted rule set. Every factor is all-or-nothing: a triggered predicate
// contributes its full configured weight and a human-readable reason.
package threat

import (
	"fmt"

	"github.com/skywatch-data/threat.report/internal/airspace"
	"github.com/skywatch-data/threat.report/internal/geom"
)

// Level is a discrete threat level derived from the score.
type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// Factor names used as breakdown keys, in evaluation order.
const (
	FactorZone        = "zone"
	FactorTransponder = "transponder"
	FactorSpeed       = "speed"
	FactorMilitary    = "military"
	FactorAltitude    = "altitude"
)

// Weights holds the points contributed by each factor when it triggers.
type Weights struct {
	Zone        int // Position inside any restricted polygon
	Transponder int // Missing or unverified transponder id
	Speed       int // Speed above the high-speed threshold
	Military    int // Military classification
	Altitude    int // Low altitude while inside a restricted zone
}

// DefaultWeights returns the default factor weights. They sum to 100.
func DefaultWeights() Weights {
	return Weights{
		Zone:        40,
		Transponder: 25,
		Speed:       15,
		Military:    10,
		Altitude:    10,
	}
}

// Thresholds holds the numeric trigger points for the speed and altitude
// factors.
type Thresholds struct {
	HighSpeedKt   float64
	LowAltitudeFt float64
}

// DefaultThresholds returns the default factor thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighSpeedKt:   400,
		LowAltitudeFt: 5000,
	}
}

// LevelBound maps a half-open score range [Min, Max) to a level. The final
// bound is inclusive of its Max, and any score at or above the final bound's
// Min always maps to that level regardless of Max.
type LevelBound struct {
	Level Level
	Min   int
	Max   int
}

// DefaultLevelBounds returns the default level table.
func DefaultLevelBounds() []LevelBound {
	return []LevelBound{
		{Level: LevelLow, Min: 0, Max: 25},
		{Level: LevelMedium, Min: 25, Max: 50},
		{Level: LevelHigh, Min: 50, Max: 70},
		{Level: LevelCritical, Min: 70, Max: 100},
	}
}

// DefaultMilitaryClasses returns the classification labels treated as
// military.
func DefaultMilitaryClasses() []string {
	return []string{"fighter", "bomber", "military_drone"}
}

// Config holds scorer configuration. Zero-value sections fall back to the
// defaults at construction.
type Config struct {
	Weights         Weights
	Thresholds      Thresholds
	LevelBounds     []LevelBound
	MilitaryClasses []string
}

// DefaultConfig returns the default scorer configuration.
func DefaultConfig() Config {
	return Config{
		Weights:         DefaultWeights(),
		Thresholds:      DefaultThresholds(),
		LevelBounds:     DefaultLevelBounds(),
		MilitaryClasses: DefaultMilitaryClasses(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Weights.Zone < 0 || c.Weights.Transponder < 0 || c.Weights.Speed < 0 ||
		c.Weights.Military < 0 || c.Weights.Altitude < 0 {
		return fmt.Errorf("threat weights must be non-negative, got %+v", c.Weights)
	}
	for i, b := range c.LevelBounds {
		if b.Min > b.Max {
			return fmt.Errorf("level bound %q has min %d > max %d", b.Level, b.Min, b.Max)
		}
		if i > 0 && b.Min < c.LevelBounds[i-1].Min {
			return fmt.Errorf("level bounds must be ordered by ascending min, %q out of order", b.Level)
		}
	}
	return nil
}

// Target is the per-track, per-frame input to the scorer.
type Target struct {
	Position       geom.Point
	SpeedKnots     float64
	Classification string
	TransponderID  string   // empty means no transponder observed
	AltitudeFt     *float64 // nil means altitude unknown
}

// Assessment is the scorer's output. Breakdown lists only triggered factors;
// Reasons follow factor-evaluation order.
type Assessment struct {
	Score     int            `json:"score"`
	Level     Level          `json:"level"`
	Reasons   []string       `json:"reasons"`
	Breakdown map[string]int `json:"breakdown"`
}

// Scorer evaluates the five-factor rule set against immutable zone and
// allowlist data. It is stateless per call and safe for concurrent use.
type Scorer struct {
	weights    Weights
	thresholds Thresholds
	bounds     []LevelBound
	military   map[string]bool

	zones     *airspace.ZoneSet
	allowlist *airspace.Allowlist
}

// NewScorer creates a Scorer. Nil zones or allowlist are valid: the zone
// factor then never triggers, and every transponder id flags as unverified.
func NewScorer(config Config, zones *airspace.ZoneSet, allowlist *airspace.Allowlist) (*Scorer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid threat config: %w", err)
	}
	bounds := config.LevelBounds
	if len(bounds) == 0 {
		bounds = DefaultLevelBounds()
	}
	classes := config.MilitaryClasses
	if classes == nil {
		classes = DefaultMilitaryClasses()
	}
	military := make(map[string]bool, len(classes))
	for _, c := range classes {
		military[c] = true
	}
	return &Scorer{
		weights:    config.Weights,
		thresholds: config.Thresholds,
		bounds:     bounds,
		military:   military,
		zones:      zones,
		allowlist:  allowlist,
	}, nil
}

// Assess evaluates all five factors against the target and returns a fresh
// Assessment. The score is clamped to [0,100] before level lookup so custom
// weight sets summing above 100 cannot escape the level table.
func (s *Scorer) Assess(tgt Target) Assessment {
	score := 0
	reasons := make([]string, 0, 5)
	breakdown := make(map[string]int, 5)

	// Factor 1: inside a restricted zone.
	zoneName, inZone := s.zones.Contains(tgt.Position)
	if inZone {
		score += s.weights.Zone
		reasons = append(reasons, fmt.Sprintf("inside_restricted_zone (%s)", zoneName))
		breakdown[FactorZone] = s.weights.Zone
	}

	// Factor 2: missing or unverified transponder. With no allowlist loaded
	// a present id still flags, since it cannot be verified.
	if tgt.TransponderID == "" || !s.allowlist.Contains(tgt.TransponderID) {
		score += s.weights.Transponder
		reasons = append(reasons, "unknown_transponder")
		breakdown[FactorTransponder] = s.weights.Transponder
	}

	// Factor 3: high speed.
	if tgt.SpeedKnots > s.thresholds.HighSpeedKt {
		score += s.weights.Speed
		reasons = append(reasons, fmt.Sprintf("high_speed (%.0f kt)", tgt.SpeedKnots))
		breakdown[FactorSpeed] = s.weights.Speed
	}

	// Factor 4: military classification.
	if s.military[tgt.Classification] {
		score += s.weights.Military
		reasons = append(reasons, fmt.Sprintf("military_classification (%s)", tgt.Classification))
		breakdown[FactorMilitary] = s.weights.Military
	}

	// Factor 5: low altitude. Only applies when the zone factor also
	// triggered; presence in a zone is the predicate that makes low altitude
	// threatening.
	if inZone && tgt.AltitudeFt != nil && *tgt.AltitudeFt < s.thresholds.LowAltitudeFt {
		score += s.weights.Altitude
		reasons = append(reasons, fmt.Sprintf("low_altitude (%.0f ft)", *tgt.AltitudeFt))
		breakdown[FactorAltitude] = s.weights.Altitude
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Assessment{
		Score:     score,
		Level:     s.levelFor(score),
		Reasons:   reasons,
		Breakdown: breakdown,
	}
}

// levelFor maps a clamped score to a level. Scores at or above the final
// bound's Min map to the final level even when a custom table leaves a gap.
func (s *Scorer) levelFor(score int) Level {
	last := s.bounds[len(s.bounds)-1]
	if score >= last.Min {
		return last.Level
	}
	for _, b := range s.bounds[:len(s.bounds)-1] {
		if score >= b.Min && score < b.Max {
			return b.Level
		}
	}
	// Below or between all configured ranges: fall back to the lowest level.
	return s.bounds[0].Level
}
