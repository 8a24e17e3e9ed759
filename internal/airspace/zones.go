// Package airspace holds the static reference data consumed by the threat
// scorer: restricted-zone polygons and the transponder allowlist. Both are
// loaded once at construction and immutable thereafter, so reads need no
// locking.
package airspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/skywatch-data/threat.report/internal/geom"
)

// DefaultZoneName is used for zone features without a name property.
const DefaultZoneName = "Unnamed Zone"

// Zone is a named polygon in world coordinates.
type Zone struct {
	Name    string
	polygon orb.Polygon
}

// ZoneSet is an immutable collection of restricted zones.
type ZoneSet struct {
	zones []Zone
}

// LoadZones reads a GeoJSON FeatureCollection of Polygon features.
// Coordinates must be in the same world unit as tracked positions. Features
// with non-polygon geometry are skipped; a file that cannot be parsed fails
// the load.
func LoadZones(path string) (*ZoneSet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read zones file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse zones GeoJSON: %w", err)
	}

	zs := &ZoneSet{}
	for _, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			continue
		}
		name := DefaultZoneName
		if v, ok := f.Properties["name"].(string); ok && v != "" {
			name = v
		}
		zs.zones = append(zs.zones, Zone{Name: name, polygon: poly})
	}
	return zs, nil
}

// NewZoneSet builds a ZoneSet from polygons given as rings of world points.
// Intended for tests and embedding callers without a GeoJSON file.
func NewZoneSet(named map[string][]geom.Point) *ZoneSet {
	zs := &ZoneSet{}
	for name, ring := range named {
		r := make(orb.Ring, 0, len(ring)+1)
		for _, p := range ring {
			r = append(r, orb.Point{p.X, p.Y})
		}
		if len(r) > 0 && r[0] != r[len(r)-1] {
			r = append(r, r[0])
		}
		zs.zones = append(zs.zones, Zone{Name: name, polygon: orb.Polygon{r}})
	}
	return zs
}

// Contains reports whether the point lies inside any zone, returning the
// first matching zone's name. A nil or empty set never matches.
func (z *ZoneSet) Contains(p geom.Point) (string, bool) {
	if z == nil {
		return "", false
	}
	pt := orb.Point{p.X, p.Y}
	for _, zone := range z.zones {
		if planar.PolygonContains(zone.polygon, pt) {
			return zone.Name, true
		}
	}
	return "", false
}

// Len returns the number of loaded zones.
func (z *ZoneSet) Len() int {
	if z == nil {
		return 0
	}
	return len(z.zones)
}
