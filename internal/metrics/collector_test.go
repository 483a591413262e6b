package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeProvider struct {
	stats Stats
}

func (f *fakeProvider) GetStats() Stats { return f.stats }

func TestCollectorUpdatesGauges(t *testing.T) {
	provider := &fakeProvider{stats: Stats{
		FilesByKind: map[string]int64{"movie": 7, "music": 3},
		Missing:     2,
		Playlists:   4,
		Collections: 1,
	}}

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	if err := os.WriteFile(dbPath, make([]byte, 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCollector(provider, dbPath, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(MediaFilesTotal.WithLabelValues("movie")); got != 7 {
		t.Errorf("movie gauge = %v, want 7", got)
	}
	if got := testutil.ToFloat64(MediaFilesMissing); got != 2 {
		t.Errorf("missing gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(DBSizeBytes.WithLabelValues("main")); got != 4096 {
		t.Errorf("db size gauge = %v, want 4096", got)
	}
	if got := testutil.ToFloat64(DBSizeBytes.WithLabelValues("wal")); got != 0 {
		t.Errorf("wal size gauge = %v, want 0 for a missing file", got)
	}
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(&fakeProvider{}, "", 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}
