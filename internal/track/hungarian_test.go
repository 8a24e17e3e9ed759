package track

import "testing"

func TestHungarianAssignOptimal(t *testing.T) {
	// Greedy on row 0 would take column 0 (cost 1) and force row 1 into cost
	// 10 for a total of 11; the optimal pairing totals 4.
	cost := [][]float64{
		{1, 2},
		{2, 10},
	}
	got := hungarianAssign(cost)
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("got %v, want [1 0]", got)
	}
}

func TestHungarianAssignForbidden(t *testing.T) {
	cost := [][]float64{
		{assignInf, assignInf},
		{1, assignInf},
	}
	got := hungarianAssign(cost)
	if got[0] != -1 {
		t.Errorf("row 0 should be unassigned, got %d", got[0])
	}
	if got[1] != 0 {
		t.Errorf("row 1 should take column 0, got %d", got[1])
	}
}

func TestHungarianAssignRectangular(t *testing.T) {
	// More rows than columns: one row stays unassigned.
	cost := [][]float64{
		{1, 5},
		{5, 1},
		{2, 2},
	}
	got := hungarianAssign(cost)

	assigned := 0
	seen := map[int]bool{}
	for _, col := range got {
		if col < 0 {
			continue
		}
		if seen[col] {
			t.Fatalf("column %d assigned twice: %v", col, got)
		}
		seen[col] = true
		assigned++
	}
	if assigned != 2 {
		t.Errorf("want 2 assignments, got %d (%v)", assigned, got)
	}
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("got %v, want rows 0 and 1 on their cheap columns", got)
	}
}

func TestHungarianAssignEmpty(t *testing.T) {
	if got := hungarianAssign(nil); got != nil {
		t.Errorf("nil cost should return nil, got %v", got)
	}
	got := hungarianAssign([][]float64{{}, {}})
	if len(got) != 2 || got[0] != -1 || got[1] != -1 {
		t.Errorf("zero-column matrix should return all -1, got %v", got)
	}
}
