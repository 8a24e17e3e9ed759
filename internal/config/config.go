// Package config holds the typed configuration surface for the pipeline.
// Every field is optional in the JSON file; the Get* accessors supply
// defaults, and Validate rejects invalid static configuration at load time
// so the pipeline refuses to start rather than degrade silently.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skywatch-data/threat.report/internal/airdata"
	"github.com/skywatch-data/threat.report/internal/speed"
	"github.com/skywatch-data/threat.report/internal/threat"
	"github.com/skywatch-data/threat.report/internal/track"
)

// DefaultConfigPath is the path to the canonical defaults file. It is the
// single source of truth for all default pipeline values.
const DefaultConfigPath = "config/threat.defaults.json"

// Config is the root configuration consumed by the pipeline.
type Config struct {
	Tracker TrackerConfig `json:"tracker"`
	Speed   SpeedConfig   `json:"speed"`
	Threat  ThreatConfig  `json:"threat"`
	ADSB    ADSBConfig    `json:"adsb"`
}

// TrackerConfig selects and tunes the association backend.
type TrackerConfig struct {
	Method         *string  `json:"method,omitempty"` // "centroid" or "iou"
	MaxDistance    *float64 `json:"max_distance,omitempty"`
	TrackBuffer    *int     `json:"track_buffer,omitempty"`
	MatchThreshold *float64 `json:"match_threshold,omitempty"`
}

// SpeedConfig tunes the speed estimator and pinhole fallback.
type SpeedConfig struct {
	FPS                  *float64 `json:"fps,omitempty"`
	FallbackObjectWidthM *float64 `json:"fallback_object_width_m,omitempty"`
	FallbackAltitudeM    *float64 `json:"fallback_altitude_m,omitempty"`
	CameraFocalLengthPx  *float64 `json:"camera_focal_length_px,omitempty"`
}

// ThreatConfig tunes the scorer's weights, thresholds and level table.
type ThreatConfig struct {
	Weights         *WeightsConfig     `json:"weights,omitempty"`
	Thresholds      *ThresholdsConfig  `json:"thresholds,omitempty"`
	LevelBounds     []LevelBoundConfig `json:"level_bounds,omitempty"`
	MilitaryClasses []string           `json:"military_classes,omitempty"`
}

// WeightsConfig holds per-factor point weights.
type WeightsConfig struct {
	Zone        *int `json:"zone,omitempty"`
	Transponder *int `json:"transponder,omitempty"`
	Speed       *int `json:"speed,omitempty"`
	Military    *int `json:"military,omitempty"`
	Altitude    *int `json:"altitude,omitempty"`
}

// ThresholdsConfig holds the numeric factor trigger points.
type ThresholdsConfig struct {
	HighSpeedKt   *float64 `json:"high_speed_kt,omitempty"`
	LowAltitudeFt *float64 `json:"low_altitude_ft,omitempty"`
}

// LevelBoundConfig maps a score range to a level name.
type LevelBoundConfig struct {
	Level string `json:"level"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// ADSBConfig tunes the ADS-B correlation tolerances.
type ADSBConfig struct {
	MatchRadiusM *float64 `json:"match_radius_m,omitempty"`
	MatchTimeS   *float64 `json:"match_time_s,omitempty"`
}

// Empty returns a Config with all fields unset; the Get* methods then yield
// pure defaults.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. Fields omitted from the file retain
// their defaults, so partial configs are safe. The file must have a .json
// extension and stay under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.Tracker.Method != nil {
		if _, err := track.ParseMethod(*c.Tracker.Method); err != nil {
			return err
		}
	}
	if c.Tracker.MaxDistance != nil && *c.Tracker.MaxDistance <= 0 {
		return fmt.Errorf("max_distance must be positive, got %v", *c.Tracker.MaxDistance)
	}
	if c.Tracker.TrackBuffer != nil && *c.Tracker.TrackBuffer < 0 {
		return fmt.Errorf("track_buffer must be non-negative, got %d", *c.Tracker.TrackBuffer)
	}
	if c.Tracker.MatchThreshold != nil && (*c.Tracker.MatchThreshold < 0 || *c.Tracker.MatchThreshold > 1) {
		return fmt.Errorf("match_threshold must be in [0,1], got %v", *c.Tracker.MatchThreshold)
	}
	if c.Speed.FPS != nil && *c.Speed.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", *c.Speed.FPS)
	}
	if c.Speed.CameraFocalLengthPx != nil && *c.Speed.CameraFocalLengthPx <= 0 {
		return fmt.Errorf("camera_focal_length_px must be positive, got %v", *c.Speed.CameraFocalLengthPx)
	}
	if c.ADSB.MatchRadiusM != nil && *c.ADSB.MatchRadiusM <= 0 {
		return fmt.Errorf("match_radius_m must be positive, got %v", *c.ADSB.MatchRadiusM)
	}
	if c.ADSB.MatchTimeS != nil && *c.ADSB.MatchTimeS <= 0 {
		return fmt.Errorf("match_time_s must be positive, got %v", *c.ADSB.MatchTimeS)
	}
	// Threat section validation is delegated to the scorer config, which
	// owns the weight and bound invariants.
	return c.ThreatConfig().Validate()
}

// TrackerConfig resolves the tracker section into the tracker's typed config.
func (c *Config) TrackerConfig() track.Config {
	out := track.DefaultConfig()
	if c.Tracker.Method != nil {
		if m, err := track.ParseMethod(*c.Tracker.Method); err == nil {
			out.Method = m
		}
	}
	if c.Tracker.MaxDistance != nil {
		out.MaxDistance = *c.Tracker.MaxDistance
	}
	if c.Tracker.TrackBuffer != nil {
		out.TrackBuffer = *c.Tracker.TrackBuffer
	}
	if c.Tracker.MatchThreshold != nil {
		out.MatchThreshold = *c.Tracker.MatchThreshold
	}
	return out
}

// SpeedConfig resolves the speed section into the estimator's typed config.
func (c *Config) SpeedConfig() speed.Config {
	out := speed.DefaultConfig()
	if c.Speed.FPS != nil {
		out.FPS = *c.Speed.FPS
	}
	if c.Speed.FallbackObjectWidthM != nil {
		out.FallbackObjectWidthM = *c.Speed.FallbackObjectWidthM
	}
	if c.Speed.FallbackAltitudeM != nil {
		out.FallbackAltitudeM = *c.Speed.FallbackAltitudeM
	}
	if c.Speed.CameraFocalLengthPx != nil {
		out.CameraFocalLengthPx = *c.Speed.CameraFocalLengthPx
	}
	return out
}

// ThreatConfig resolves the threat section into the scorer's typed config.
func (c *Config) ThreatConfig() threat.Config {
	out := threat.DefaultConfig()
	if w := c.Threat.Weights; w != nil {
		if w.Zone != nil {
			out.Weights.Zone = *w.Zone
		}
		if w.Transponder != nil {
			out.Weights.Transponder = *w.Transponder
		}
		if w.Speed != nil {
			out.Weights.Speed = *w.Speed
		}
		if w.Military != nil {
			out.Weights.Military = *w.Military
		}
		if w.Altitude != nil {
			out.Weights.Altitude = *w.Altitude
		}
	}
	if t := c.Threat.Thresholds; t != nil {
		if t.HighSpeedKt != nil {
			out.Thresholds.HighSpeedKt = *t.HighSpeedKt
		}
		if t.LowAltitudeFt != nil {
			out.Thresholds.LowAltitudeFt = *t.LowAltitudeFt
		}
	}
	if len(c.Threat.LevelBounds) > 0 {
		bounds := make([]threat.LevelBound, 0, len(c.Threat.LevelBounds))
		for _, b := range c.Threat.LevelBounds {
			bounds = append(bounds, threat.LevelBound{
				Level: threat.Level(b.Level),
				Min:   b.Min,
				Max:   b.Max,
			})
		}
		out.LevelBounds = bounds
	}
	if c.Threat.MilitaryClasses != nil {
		out.MilitaryClasses = c.Threat.MilitaryClasses
	}
	return out
}

// ADSBConfig resolves the adsb section into the airdata typed config.
func (c *Config) ADSBConfig() airdata.Config {
	out := airdata.DefaultConfig()
	if c.ADSB.MatchRadiusM != nil {
		out.MatchRadiusM = *c.ADSB.MatchRadiusM
	}
	if c.ADSB.MatchTimeS != nil {
		out.MatchTimeS = *c.ADSB.MatchTimeS
	}
	return out
}
