package geom

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadHomographyRoundTrip(t *testing.T) {
	values := [3][3]float64{{1.5, 0, 10}, {0, 2.5, -3}, {0.001, 0, 1}}
	path := filepath.Join(t.TempDir(), "calibration.json")

	if err := SaveHomography(NewHomography(values), path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	h, err := LoadHomography(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := h.Matrix(); got != values {
		t.Errorf("round trip changed matrix: got %v, want %v", got, values)
	}
}

func TestLoadHomographyRejectsBadShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong shape", `{"homography_matrix": [[1,0,0],[0,1,0],[0,0,1]], "shape": [2,3]}`},
		{"missing shape", `{"homography_matrix": [[1,0,0],[0,1,0],[0,0,1]]}`},
		{"too few rows", `{"homography_matrix": [[1,0,0],[0,1,0]], "shape": [3,3]}`},
		{"short row", `{"homography_matrix": [[1,0],[0,1,0],[0,0,1]], "shape": [3,3]}`},
		{"not json", `not json at all`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadHomography(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadHomographyMissingFile(t *testing.T) {
	if _, err := LoadHomography(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
