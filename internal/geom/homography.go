// Package geom maps image-plane points to world-plane coordinates. The
// primary path is a calibrated 3x3 homography; a crude pinhole model serves
// as the degraded fallback when no calibration is available.
package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a 2D point. Units depend on context: pixels on the image plane,
// metres on the world plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Homography is an immutable 3x3 projective transform from the image plane to
// the world ground plane. Valid under a planar-scene assumption.
type Homography struct {
	// Row-major 3x3 matrix.
	m [9]float64
}

// NewHomography builds a Homography from a row-major 3x3 matrix.
func NewHomography(values [3][3]float64) *Homography {
	h := &Homography{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h.m[i*3+j] = values[i][j]
		}
	}
	return h
}

// Matrix returns the row-major 3x3 matrix of the transform.
func (h *Homography) Matrix() [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = h.m[i*3+j]
		}
	}
	return out
}

// ImageToWorld transforms an image point (u, v) in pixels to world
// coordinates in metres. The homogeneous vector [u, v, 1] is multiplied by
// the matrix and the result divided through by its third component.
//
// Returns ok=false when the perspective division is degenerate (zero or
// non-finite divisor) or the result is non-finite. This is an expected
// runtime condition for points near the horizon line, not an error.
func (h *Homography) ImageToWorld(u, v float64) (Point, bool) {
	w := h.m[6]*u + h.m[7]*v + h.m[8]
	if w == 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return Point{}, false
	}
	x := (h.m[0]*u + h.m[1]*v + h.m[2]) / w
	y := (h.m[3]*u + h.m[4]*v + h.m[5]) / w
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// WorldDistance returns the Euclidean distance in metres between two world
// points.
func WorldDistance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// ComputeHomography solves for the projective transform that best maps the
// given image points onto the paired world points, using direct linear
// transformation with h33 fixed to 1 and a least-squares solve over all
// correspondences.
//
// Returns nil when fewer than 4 correspondences are supplied, when the point
// slices differ in length, or when the system is unsolvable. Degenerate
// (collinear) point sets are a caller responsibility; they surface here as a
// failed solve.
func ComputeHomography(imagePoints, worldPoints []Point) *Homography {
	n := len(imagePoints)
	if n < 4 || len(worldPoints) != n {
		return nil
	}

	// Each correspondence contributes two rows:
	//   [u v 1 0 0 0 -u*x -v*x] . h = x
	//   [0 0 0 u v 1 -u*y -v*y] . h = y
	a := mat.NewDense(2*n, 8, nil)
	b := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		u, v := imagePoints[i].X, imagePoints[i].Y
		x, y := worldPoints[i].X, worldPoints[i].Y

		a.SetRow(2*i, []float64{u, v, 1, 0, 0, 0, -u * x, -v * x})
		b.SetVec(2*i, x)
		a.SetRow(2*i+1, []float64{0, 0, 0, u, v, 1, -u * y, -v * y})
		b.SetVec(2*i+1, y)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil
	}

	h := &Homography{}
	for i := 0; i < 8; i++ {
		val := sol.AtVec(i)
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		h.m[i] = val
	}
	h.m[8] = 1
	return h
}
