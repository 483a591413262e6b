package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	available := runtime.GOMAXPROCS(0)

	if got := Count(1.0, 0); got != available {
		t.Errorf("Count(1.0, 0) = %d, want %d", got, available)
	}
	if got := Count(2.0, 0); got != available*2 {
		t.Errorf("Count(2.0, 0) = %d, want %d", got, available*2)
	}
	if got := Count(2.0, 3); got > 3 {
		t.Errorf("Count(2.0, 3) = %d, want at most 3", got)
	}
	if got := Count(0.1, 0); got < 1 {
		t.Errorf("Count(0.1, 0) = %d, want at least 1", got)
	}
}

func TestCountOverride(t *testing.T) {
	t.Setenv("METADATA_WORKERS", "5")
	if got := Count(1.0, 0); got != 5 {
		t.Errorf("Count with override = %d, want 5", got)
	}
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("Count with override and limit = %d, want 2", got)
	}

	t.Setenv("METADATA_WORKERS", "garbage")
	if got := Count(1.0, 0); got < 1 {
		t.Errorf("Count with bad override = %d, want computed value", got)
	}
}
