package database

import (
	"testing"

	"media-vault/internal/mediatypes"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func seedFilterLibrary(t *testing.T, d *Database) {
	t.Helper()

	records := []struct {
		path       string
		title      string
		kind       mediatypes.MediaKind
		year       int
		duration   int64
		codec      string
		resolution string
	}{
		{"/media/old.mp4", "Old Movie", mediatypes.KindMovie, 1985, 6000, "h264", "1920x1080"},
		{"/media/new.mkv", "New Movie", mediatypes.KindMovie, 2022, 7200, "hevc", "3840x2160"},
		{"/media/show.mkv", "Show", mediatypes.KindTVEpisode, 2020, 2700, "h264", "1280x720"},
		{"/media/clip.mp4", "Clip", mediatypes.KindVideo, 0, 120, "h264", "640x480"},
	}
	for _, r := range records {
		rec := testRecord(r.path)
		rec.Title = r.title
		rec.Kind = r.kind
		rec.Year = r.year
		rec.Duration = r.duration
		rec.Codec = r.codec
		rec.Resolution = r.resolution
		if _, err := d.UpsertMedia(rec); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFilterMedia(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	seedFilterLibrary(t, d)

	tests := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{"no criteria returns all", FilterCriteria{},
			[]string{"Old Movie", "New Movie", "Show", "Clip"}},
		{"year range", FilterCriteria{MinYear: intPtr(2000), MaxYear: intPtr(2021)},
			[]string{"Show"}},
		{"min duration", FilterCriteria{MinDuration: int64Ptr(3600)},
			[]string{"Old Movie", "New Movie"}},
		{"codec", FilterCriteria{Codecs: []string{"hevc"}},
			[]string{"New Movie"}},
		{"kind", FilterCriteria{Kinds: []string{"movie"}},
			[]string{"Old Movie", "New Movie"}},
		{"4k bucket", FilterCriteria{Resolutions: []string{"4k"}},
			[]string{"New Movie"}},
		{"1080p bucket", FilterCriteria{Resolutions: []string{"1080p"}},
			[]string{"Old Movie"}},
		{"sd bucket", FilterCriteria{Resolutions: []string{"sd"}},
			[]string{"Clip"}},
		{"multiple buckets", FilterCriteria{Resolutions: []string{"720p", "sd"}},
			[]string{"Show", "Clip"}},
		{"unknown bucket matches nothing", FilterCriteria{Resolutions: []string{"8k"}},
			nil},
		{"combined", FilterCriteria{Kinds: []string{"movie"}, Codecs: []string{"h264"}},
			[]string{"Old Movie"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.FilterMedia(tt.criteria)
			if err != nil {
				t.Fatalf("FilterMedia: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("matched %v, want %v", titles(got), tt.want)
			}
			seen := map[string]bool{}
			for _, m := range got {
				seen[m.Title] = true
			}
			for _, title := range tt.want {
				if !seen[title] {
					t.Errorf("matched %v, want %v", titles(got), tt.want)
				}
			}
		})
	}
}

func TestResolutionBucketMembership(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	records := []struct {
		path       string
		title      string
		resolution string
	}{
		{"/media/uhd.mkv", "UHD", "3840x2160"},
		{"/media/labeled.mkv", "Labeled", "4K"},
		{"/media/hd.mp4", "HD", "1920x1080"},
		{"/media/dvd.mp4", "DVD", "720x576"},
		{"/media/ntsc.mp4", "NTSC", "640x480"},
		{"/media/web.mp4", "Web", "640x360"},
	}
	for _, r := range records {
		rec := testRecord(r.path)
		rec.Title = r.title
		rec.Resolution = r.resolution
		if _, err := d.UpsertMedia(rec); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		bucket string
		want   []string
	}{
		// The 4k bucket covers both pixel heights and the bare "4K" label.
		{"4k", []string{"UHD", "Labeled"}},
		// sd is exactly the 480- and 576-line formats; lower web
		// resolutions fall outside every bucket.
		{"sd", []string{"DVD", "NTSC"}},
	}
	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			got, err := d.FilterMedia(FilterCriteria{Resolutions: []string{tt.bucket}})
			if err != nil {
				t.Fatal(err)
			}
			seen := map[string]bool{}
			for _, m := range got {
				seen[m.Title] = true
			}
			if len(got) != len(tt.want) {
				t.Fatalf("matched %v, want %v", titles(got), tt.want)
			}
			for _, title := range tt.want {
				if !seen[title] {
					t.Errorf("matched %v, want %v", titles(got), tt.want)
				}
			}
		})
	}
}

func TestFilterMediaLimitOffset(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	seedFilterLibrary(t, d)

	page, err := d.FilterMedia(FilterCriteria{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}

	rest, err := d.FilterMedia(FilterCriteria{Limit: 10, Offset: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 2 {
		t.Fatalf("remainder size = %d, want 2", len(rest))
	}
	if page[0].ID == rest[0].ID {
		t.Error("offset page should not repeat records")
	}
}

func TestFilterMediaExcludesMissing(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	seedFilterLibrary(t, d)

	if _, err := d.MarkMissing([]string{"/media/old.mp4"}); err != nil {
		t.Fatal(err)
	}

	got, err := d.FilterMedia(FilterCriteria{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "Old Movie" {
		t.Errorf("matched %v, want just Old Movie", titles(got))
	}
}
