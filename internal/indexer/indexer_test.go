package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"media-vault/internal/database"
	"media-vault/internal/mediatypes"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	d, err := database.New(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "movies", "The.Matrix.1999.mp4"), "matrix bytes")
	writeFile(t, filepath.Join(root, "shows", "Show.S01E02.mkv"), "episode bytes")
	writeFile(t, filepath.Join(root, "music", "song.mp3"), "song bytes")
	return root
}

func TestScanDirectoryAddsThenUpdates(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	root := newTestLibrary(t)
	ix := New(d, Config{})

	result, err := ix.ScanDirectory(root)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if result.TotalFound != 3 || result.Added != 3 || result.Updated != 0 {
		t.Errorf("first scan = %+v, want 3 found, 3 added", result)
	}
	if result.Errors != 0 {
		t.Errorf("first scan errors = %d: %v", result.Errors, result.Failures)
	}

	// A rescan of an unchanged tree changes nothing but the refresh counts.
	result, err = ix.ScanDirectory(root)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if result.Added != 0 || result.Updated != 3 || result.Missing != 0 {
		t.Errorf("second scan = %+v, want 3 updated and nothing else", result)
	}

	all, err := d.GetAllMedia()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("record count = %d, want 3", len(all))
	}
}

func TestScanClassifiesRecords(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	root := newTestLibrary(t)
	ix := New(d, Config{})

	if _, err := ix.ScanDirectory(root); err != nil {
		t.Fatal(err)
	}

	movie, err := d.GetMediaByPath(filepath.Join(root, "movies", "The.Matrix.1999.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	if movie == nil || movie.Kind != mediatypes.KindMovie {
		t.Errorf("movie record = %+v, want kind movie", movie)
	}
	if movie.Title != "The Matrix" || movie.Year != 1999 {
		t.Errorf("parsed title/year = %q/%d", movie.Title, movie.Year)
	}

	ep, err := d.GetMediaByPath(filepath.Join(root, "shows", "Show.S01E02.mkv"))
	if err != nil {
		t.Fatal(err)
	}
	if ep == nil || ep.Kind != mediatypes.KindTVEpisode {
		t.Fatalf("episode record = %+v, want kind tv_episode", ep)
	}
	if ep.SeasonNumber == nil || *ep.SeasonNumber != 1 ||
		ep.EpisodeNumber == nil || *ep.EpisodeNumber != 2 {
		t.Errorf("season/episode = %v/%v, want 1/2", ep.SeasonNumber, ep.EpisodeNumber)
	}

	song, err := d.GetMediaByPath(filepath.Join(root, "music", "song.mp3"))
	if err != nil {
		t.Fatal(err)
	}
	if song == nil || song.Kind != mediatypes.KindMusic {
		t.Errorf("audio record = %+v, want kind music", song)
	}
}

func TestScanSweepsRemovedFiles(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	root := newTestLibrary(t)
	ix := New(d, Config{})

	if _, err := ix.ScanDirectory(root); err != nil {
		t.Fatal(err)
	}

	gone := filepath.Join(root, "music", "song.mp3")
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	result, err := ix.ScanDirectory(root)
	if err != nil {
		t.Fatal(err)
	}
	if result.Missing != 1 {
		t.Errorf("missing = %d, want 1", result.Missing)
	}

	rec, err := d.GetMediaByPath(gone)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || !rec.IsDeleted {
		t.Errorf("removed file's record = %+v, want flagged missing", rec)
	}
}

func TestScanSurvivesUnreadableFile(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.mp4"), "video bytes")

	// A dangling symlink is listed by the traversal but fails on open.
	bad := filepath.Join(root, "bad.mp4")
	if err := os.Symlink(filepath.Join(root, "gone.mp4"), bad); err != nil {
		t.Fatal(err)
	}

	ix := New(d, Config{})
	result, err := ix.ScanDirectory(root)
	if err != nil {
		t.Fatal(err)
	}

	// Both files are cataloged; the unreadable one gets a placeholder
	// fingerprint and shows up in the error tally.
	if result.TotalFound != 2 || result.Added != 2 {
		t.Errorf("result = %+v, want 2 found, 2 added", result)
	}
	if result.Errors != 1 || len(result.Failures) != 1 {
		t.Fatalf("errors = %d, failures = %+v, want exactly one", result.Errors, result.Failures)
	}
	if result.Failures[0].Path != bad {
		t.Errorf("failure path = %q, want %q", result.Failures[0].Path, bad)
	}

	good, err := d.GetMediaByPath(filepath.Join(root, "good.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	if good == nil || good.FileHash == placeholderHash {
		t.Errorf("good record = %+v, want a real fingerprint", good)
	}
	rec, err := d.GetMediaByPath(bad)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.FileHash != placeholderHash {
		t.Errorf("unreadable record = %+v, want placeholder fingerprint", rec)
	}
}

func TestScanAttachesSubtitleSidecars(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "movie.mp4"), "video")
	writeFile(t, filepath.Join(root, "movie.en.srt"), "subs")

	ix := New(d, Config{})
	result, err := ix.ScanDirectory(root)
	if err != nil {
		t.Fatal(err)
	}

	// The sidecar is found but never cataloged as media of its own.
	if result.TotalFound != 2 || result.Added != 1 {
		t.Errorf("result = %+v, want 2 found, 1 added", result)
	}

	rec, err := d.GetMediaByPath(filepath.Join(root, "movie.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	tracks, err := d.GetSubtitleTracks(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].Language != "en" {
		t.Errorf("subtitle tracks = %+v, want one english track", tracks)
	}
}

func TestScanMissingRootFails(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ix := New(d, Config{})

	if _, err := ix.ScanDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("scanning a nonexistent root should fail")
	}
}

func TestConcurrentScanRejected(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ix := New(d, Config{})

	ix.running.Store(true)
	if _, err := ix.ScanDirectory(t.TempDir()); err != ErrScanInProgress {
		t.Errorf("err = %v, want ErrScanInProgress", err)
	}
	ix.running.Store(false)
}

func TestScanLibrarySweepsAllRoots(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	movies := t.TempDir()
	music := t.TempDir()
	writeFile(t, filepath.Join(movies, "a.mp4"), "a")
	writeFile(t, filepath.Join(music, "b.mp3"), "b")

	ix := New(d, Config{})
	if _, err := ix.ScanLibrary([]string{movies, music}); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(music, "b.mp3")); err != nil {
		t.Fatal(err)
	}
	result, err := ix.ScanLibrary([]string{movies, music})
	if err != nil {
		t.Fatal(err)
	}
	if result.Missing != 1 {
		t.Errorf("missing = %d, want 1", result.Missing)
	}
	a, err := d.GetMediaByPath(filepath.Join(movies, "a.mp4"))
	if err != nil {
		t.Fatal(err)
	}
	if a.IsDeleted {
		t.Error("file still on disk was flagged missing")
	}
}

func TestScanDirectoryLeavesOtherRootsAlone(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	movies := t.TempDir()
	music := t.TempDir()
	writeFile(t, filepath.Join(movies, "a.mp4"), "a")
	writeFile(t, filepath.Join(music, "b.mp3"), "b")

	ix := New(d, Config{})
	if _, err := ix.ScanLibrary([]string{movies, music}); err != nil {
		t.Fatal(err)
	}

	// Rescanning just one root must not sweep records under the other.
	result, err := ix.ScanDirectory(movies)
	if err != nil {
		t.Fatal(err)
	}
	if result.Missing != 0 {
		t.Errorf("missing = %d, want 0", result.Missing)
	}
	b, err := d.GetMediaByPath(filepath.Join(music, "b.mp3"))
	if err != nil {
		t.Fatal(err)
	}
	if b.IsDeleted {
		t.Error("record outside the scanned root was flagged missing")
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fileType  mediatypes.FileType
		isEpisode bool
		want      mediatypes.MediaKind
	}{
		{"plain video", mediatypes.FileTypeVideo, false, mediatypes.KindMovie},
		{"episode markers", mediatypes.FileTypeVideo, true, mediatypes.KindTVEpisode},
		{"audio", mediatypes.FileTypeAudio, false, mediatypes.KindMusic},
		{"audio with episode markers", mediatypes.FileTypeAudio, true, mediatypes.KindTVEpisode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.fileType, tt.isEpisode); got != tt.want {
				t.Errorf("classify = %v, want %v", got, tt.want)
			}
		})
	}
}
