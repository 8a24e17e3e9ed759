package geom

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// homographyFile is the on-disk calibration format produced by the external
// calibration step.
type homographyFile struct {
	HomographyMatrix [][]float64 `json:"homography_matrix"`
	Shape            []int       `json:"shape"`
}

// LoadHomography reads a calibration file and returns the homography it
// contains. The file must declare a 3x3 shape and carry a 3x3 matrix;
// anything else is a configuration error and fails the load.
func LoadHomography(path string) (*Homography, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homography file: %w", err)
	}

	var f homographyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse homography JSON: %w", err)
	}

	if len(f.Shape) != 2 || f.Shape[0] != 3 || f.Shape[1] != 3 {
		return nil, fmt.Errorf("homography shape must be [3,3], got %v", f.Shape)
	}
	if len(f.HomographyMatrix) != 3 {
		return nil, fmt.Errorf("homography matrix must have 3 rows, got %d", len(f.HomographyMatrix))
	}

	var values [3][3]float64
	for i, row := range f.HomographyMatrix {
		if len(row) != 3 {
			return nil, fmt.Errorf("homography matrix row %d must have 3 columns, got %d", i, len(row))
		}
		copy(values[i][:], row)
	}

	return NewHomography(values), nil
}

// SaveHomography writes a homography to the on-disk calibration format.
func SaveHomography(h *Homography, path string) error {
	m := h.Matrix()
	f := homographyFile{
		HomographyMatrix: [][]float64{m[0][:], m[1][:], m[2][:]},
		Shape:            []int{3, 3},
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal homography: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o644); err != nil {
		return fmt.Errorf("failed to write homography file: %w", err)
	}
	return nil
}
