package airspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAllowlistFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allowlist.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAllowlist(t *testing.T) {
	a, err := LoadAllowlist(writeAllowlistFile(t,
		"operator,transponder_id,notes\nAmerican,AAL123,scheduled\nUnited,UAL456,\n"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if a.Len() != 2 {
		t.Fatalf("want 2 ids, got %d", a.Len())
	}
	if !a.Contains("AAL123") || !a.Contains("UAL456") {
		t.Error("loaded ids should be present")
	}
	if a.Contains("N99999") {
		t.Error("unlisted id should not be present")
	}
}

func TestLoadAllowlistSkipsEmptyIDs(t *testing.T) {
	a, err := LoadAllowlist(writeAllowlistFile(t, "transponder_id\nAAL123\n\n  \n"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("blank rows should be skipped, got %d ids", a.Len())
	}
}

func TestLoadAllowlistMissingColumn(t *testing.T) {
	if _, err := LoadAllowlist(writeAllowlistFile(t, "operator,callsign\nAmerican,AAL123\n")); err == nil {
		t.Error("missing transponder_id column should fail the load")
	}
}

func TestNilAllowlist(t *testing.T) {
	var a *Allowlist
	if a.Contains("anything") {
		t.Error("nil allowlist should never match")
	}
	if a.Len() != 0 {
		t.Error("nil allowlist should have length 0")
	}
}
