package database

import (
	"path/filepath"
	"testing"
	"time"

	"media-vault/internal/mediatypes"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := New(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func testRecord(path string) *MediaRecord {
	return &MediaRecord{
		FilePath:     path,
		FileHash:     "abc123",
		FileName:     filepath.Base(path),
		FileSize:     1024,
		Kind:         mediatypes.KindMovie,
		Title:        "Test Movie",
		Year:         1999,
		LastModified: time.Now(),
	}
}

func TestUpsertMediaIdempotent(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	rec := testRecord("/media/movie.mp4")
	created, err := d.UpsertMedia(rec)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Error("first upsert should report a new record")
	}
	if rec.ID == 0 {
		t.Error("upsert should fill in the record ID")
	}

	again := testRecord("/media/movie.mp4")
	again.FileSize = 2048
	created, err = d.UpsertMedia(again)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert should report an update")
	}
	if again.ID != rec.ID {
		t.Errorf("updated record ID = %d, want %d", again.ID, rec.ID)
	}

	all, err := d.GetAllMedia()
	if err != nil {
		t.Fatalf("GetAllMedia: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("record count = %d, want 1", len(all))
	}
	if all[0].FileSize != 2048 {
		t.Errorf("file size = %d, want the refreshed 2048", all[0].FileSize)
	}
}

func TestUpsertPreservesIndexedAt(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	rec := testRecord("/media/movie.mp4")
	if _, err := d.UpsertMedia(rec); err != nil {
		t.Fatal(err)
	}

	// Age the row so preservation is observable.
	const old = "2020-01-01T00:00:00Z"
	if _, err := d.db.Exec(
		`UPDATE media_files SET indexed_at = ? WHERE id = ?`, old, rec.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := d.UpsertMedia(testRecord("/media/movie.mp4")); err != nil {
		t.Fatal(err)
	}

	got, err := d.GetMediaByID(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IndexedAt.Format(time.RFC3339) != old {
		t.Errorf("indexed_at = %s, want original %s", got.IndexedAt.Format(time.RFC3339), old)
	}
}

func TestUpsertPreservesPlayback(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	rec := testRecord("/media/movie.mp4")
	if _, err := d.UpsertMedia(rec); err != nil {
		t.Fatal(err)
	}
	if err := d.UpdatePosition(rec.ID, 500, 7200); err != nil {
		t.Fatal(err)
	}

	// A rescan upsert must not disturb the resume point.
	if _, err := d.UpsertMedia(testRecord("/media/movie.mp4")); err != nil {
		t.Fatal(err)
	}

	state, err := d.GetPlaybackState(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state == nil || state.Position != 500 {
		t.Errorf("playback state = %+v, want position 500", state)
	}
}

func TestMarkMissingSweep(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	for _, path := range []string{"/media/a.mp4", "/media/b.mp4", "/media/c.mp4"} {
		if _, err := d.UpsertMedia(testRecord(path)); err != nil {
			t.Fatal(err)
		}
	}

	marked, err := d.MarkMissing([]string{"/media/a.mp4", "/media/c.mp4"})
	if err != nil {
		t.Fatalf("MarkMissing: %v", err)
	}
	if marked != 1 {
		t.Errorf("marked = %d, want 1", marked)
	}

	all, err := d.GetAllMedia()
	if err != nil {
		t.Fatal(err)
	}
	paths := map[string]bool{}
	for _, m := range all {
		paths[m.FilePath] = true
	}
	if !paths["/media/a.mp4"] || !paths["/media/c.mp4"] || paths["/media/b.mp4"] {
		t.Errorf("live paths = %v, want a and c only", paths)
	}

	// The file reappears: upsert revives it.
	if _, err := d.UpsertMedia(testRecord("/media/b.mp4")); err != nil {
		t.Fatal(err)
	}
	b, err := d.GetMediaByPath("/media/b.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if b.IsDeleted {
		t.Error("reappeared file should no longer be flagged missing")
	}
}

func TestMarkMissingEmptyObservedFlagsAll(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	if _, err := d.UpsertMedia(testRecord("/media/a.mp4")); err != nil {
		t.Fatal(err)
	}
	marked, err := d.MarkMissing(nil)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 1 {
		t.Errorf("marked = %d, want 1", marked)
	}
}

func TestMarkMissingUnderScopesToRoot(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	for _, path := range []string{"/movies/a.mp4", "/movies/b.mp4", "/music/song.mp3"} {
		if _, err := d.UpsertMedia(testRecord(path)); err != nil {
			t.Fatal(err)
		}
	}

	marked, err := d.MarkMissingUnder("/movies", []string{"/movies/a.mp4"})
	if err != nil {
		t.Fatalf("MarkMissingUnder: %v", err)
	}
	if marked != 1 {
		t.Errorf("marked = %d, want 1", marked)
	}

	// The record outside the swept root is untouched.
	song, err := d.GetMediaByPath("/music/song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if song.IsDeleted {
		t.Error("record outside the swept root was flagged")
	}
	b, _ := d.GetMediaByPath("/movies/b.mp4")
	if !b.IsDeleted {
		t.Error("unobserved record under the root should be flagged")
	}
}

func TestUnknownStoredKindIsHardError(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	_, err := d.db.Exec(
		`INSERT INTO media_files (file_path, file_hash, file_name, file_size,
			media_type, indexed_at, last_modified)
		 VALUES ('/media/x.mp4', 'h', 'x.mp4', 1, 'hologram', ?, ?)`,
		now(), now())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.GetAllMedia(); err == nil {
		t.Error("reading a record with an unknown media kind should fail, not default")
	}
}

func TestSearchMedia(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	rec := testRecord("/media/The.Matrix.1999.mp4")
	rec.Title = "The Matrix"
	if _, err := d.UpsertMedia(rec); err != nil {
		t.Fatal(err)
	}
	other := testRecord("/media/other.mp4")
	other.Title = "Something Else"
	if _, err := d.UpsertMedia(other); err != nil {
		t.Fatal(err)
	}

	results, err := d.SearchMedia("matrix")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Title != "The Matrix" {
		t.Errorf("search results = %+v, want just The Matrix", results)
	}
}

func TestLibraryStats(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	movie := testRecord("/media/movie.mp4")
	movie.Duration = 7200
	if _, err := d.UpsertMedia(movie); err != nil {
		t.Fatal(err)
	}
	song := testRecord("/media/song.mp3")
	song.Kind = mediatypes.KindMusic
	if _, err := d.UpsertMedia(song); err != nil {
		t.Fatal(err)
	}
	gone := testRecord("/media/gone.mp4")
	if _, err := d.UpsertMedia(gone); err != nil {
		t.Fatal(err)
	}
	if _, err := d.MarkMissing([]string{"/media/movie.mp4", "/media/song.mp3"}); err != nil {
		t.Fatal(err)
	}

	stats, err := d.GetLibraryStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalFiles != 2 {
		t.Errorf("total files = %d, want 2", stats.TotalFiles)
	}
	if stats.MissingFiles != 1 {
		t.Errorf("missing files = %d, want 1", stats.MissingFiles)
	}
	if stats.TotalDuration != 7200 {
		t.Errorf("total duration = %d, want 7200", stats.TotalDuration)
	}
	if stats.ByKind["movie"] != 1 || stats.ByKind["music"] != 1 {
		t.Errorf("by kind = %v", stats.ByKind)
	}
}
