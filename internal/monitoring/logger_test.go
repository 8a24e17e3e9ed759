package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer SetLogger(orig)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})

	Logf("hello %d", 42)
	if captured != "hello 42" {
		t.Errorf("got %q, want %q", captured, "hello 42")
	}

	// nil installs a no-op logger rather than panicking.
	SetLogger(nil)
	Logf("dropped")
}
