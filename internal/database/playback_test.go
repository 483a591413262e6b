package database

import (
	"testing"
)

func TestPlaybackLifecycle(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	rec := testRecord("/media/movie.mp4")
	if _, err := d.UpsertMedia(rec); err != nil {
		t.Fatal(err)
	}

	// Nothing played yet.
	state, err := d.GetPlaybackState(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state != nil {
		t.Fatalf("unplayed record has state %+v, want nil", state)
	}

	if err := d.UpdatePosition(rec.ID, 1200, 7200); err != nil {
		t.Fatal(err)
	}
	state, err = d.GetPlaybackState(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Position != 1200 || state.Duration != 7200 || state.Watched {
		t.Errorf("state = %+v, want position 1200, unwatched", state)
	}
	if state.LastPlayed == nil {
		t.Error("last played should be set after a position update")
	}

	if err := d.MarkWatched(rec.ID); err != nil {
		t.Fatal(err)
	}
	state, err = d.GetPlaybackState(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !state.Watched || state.WatchCount != 1 || state.Position != 0 {
		t.Errorf("state = %+v, want watched once with position reset", state)
	}

	if err := d.MarkWatched(rec.ID); err != nil {
		t.Fatal(err)
	}
	state, _ = d.GetPlaybackState(rec.ID)
	if state.WatchCount != 2 {
		t.Errorf("watch count = %d, want 2 after rewatching", state.WatchCount)
	}

	if err := d.MarkUnwatched(rec.ID); err != nil {
		t.Fatal(err)
	}
	state, _ = d.GetPlaybackState(rec.ID)
	if state.Watched {
		t.Error("record should be unwatched again")
	}
	if state.WatchCount != 2 {
		t.Errorf("watch count = %d, should survive unwatching", state.WatchCount)
	}
}

func TestGetInProgress(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	watching := testRecord("/media/watching.mp4")
	finished := testRecord("/media/finished.mp4")
	untouched := testRecord("/media/untouched.mp4")
	for _, r := range []*MediaRecord{watching, finished, untouched} {
		if _, err := d.UpsertMedia(r); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.UpdatePosition(watching.ID, 600, 7200); err != nil {
		t.Fatal(err)
	}
	if err := d.MarkWatched(finished.ID); err != nil {
		t.Fatal(err)
	}

	got, err := d.GetInProgress(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != watching.ID {
		t.Errorf("in progress = %v, want just the half-watched record", titles(got))
	}
}

func TestGetRecentlyPlayed(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	a := testRecord("/media/a.mp4")
	b := testRecord("/media/b.mp4")
	for _, r := range []*MediaRecord{a, b} {
		if _, err := d.UpsertMedia(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.UpdatePosition(a.ID, 100, 0); err != nil {
		t.Fatal(err)
	}

	got, err := d.GetRecentlyPlayed(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("recently played has %d records, want just the played one", len(got))
	}
}

func TestWatchStats(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	a := testRecord("/media/a.mp4")
	b := testRecord("/media/b.mp4")
	for _, r := range []*MediaRecord{a, b} {
		if _, err := d.UpsertMedia(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.UpdatePosition(a.ID, 300, 7200); err != nil {
		t.Fatal(err)
	}
	if err := d.MarkWatched(b.ID); err != nil {
		t.Fatal(err)
	}

	stats, err := d.GetWatchStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.WatchedCount != 1 {
		t.Errorf("watched = %d, want 1", stats.WatchedCount)
	}
	if stats.InProgressCount != 1 {
		t.Errorf("in progress = %d, want 1", stats.InProgressCount)
	}
	if stats.TotalPlays != 1 {
		t.Errorf("total plays = %d, want 1", stats.TotalPlays)
	}
}
