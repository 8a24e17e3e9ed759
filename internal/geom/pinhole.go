package geom

// Pinhole is the degraded monocular fallback used when no homography is
// configured. It estimates range from the apparent width of a known-size
// object and scales the image centroid into an approximate ground position.
// Accuracy is not guaranteed; the estimate is only consistent and
// reproducible enough for relative motion.
type Pinhole struct {
	// ReferenceWidthM is the assumed real-world width of the tracked object
	// class in metres (e.g. an airliner wingspan).
	ReferenceWidthM float64

	// FocalLengthPx is the camera focal length in pixels.
	FocalLengthPx float64
}

// GroundPosition estimates a world position for an image centroid given the
// object's bounding-box width in pixels.
//
// Range is estimated as (referenceWidth * focalLength) / bboxWidthPx, then
// the centroid is scaled by range/focalLength. Returns ok=false when the
// bounding-box width or focal length is non-positive.
func (p Pinhole) GroundPosition(centroid Point, bboxWidthPx float64) (Point, bool) {
	if bboxWidthPx <= 0 || p.FocalLengthPx <= 0 {
		return Point{}, false
	}

	distance := (p.ReferenceWidthM * p.FocalLengthPx) / bboxWidthPx
	scale := distance / p.FocalLengthPx
	return Point{X: centroid.X * scale, Y: centroid.Y * scale}, true
}
