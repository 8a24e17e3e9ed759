package airspace

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Allowlist is an immutable set of pre-authorized transponder ids.
type Allowlist struct {
	ids map[string]struct{}
}

// LoadAllowlist reads tabular allowlist data. The file must carry a
// transponder_id column; all other columns are ignored. A missing column is a
// configuration error and fails the load.
func LoadAllowlist(path string) (*Allowlist, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open allowlist file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse allowlist CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("allowlist file is empty: %s", path)
	}

	idCol := -1
	for i, col := range rows[0] {
		if strings.TrimSpace(col) == "transponder_id" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("allowlist file missing required transponder_id column")
	}

	a := &Allowlist{ids: make(map[string]struct{}, len(rows)-1)}
	for _, row := range rows[1:] {
		if idCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[idCol])
		if id == "" {
			continue
		}
		a.ids[id] = struct{}{}
	}
	return a, nil
}

// NewAllowlist builds an Allowlist from ids directly.
func NewAllowlist(ids ...string) *Allowlist {
	a := &Allowlist{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// Contains reports whether the transponder id is allowlisted. A nil
// allowlist never matches.
func (a *Allowlist) Contains(id string) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[id]
	return ok
}

// Len returns the number of allowlisted ids.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}
