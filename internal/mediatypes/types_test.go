package mediatypes

import "testing"

// TestGetFileType tests extension-based classification.
func TestGetFileType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected FileType
	}{
		{"movie.mp4", FileTypeVideo},
		{"video.MKV", FileTypeVideo},
		{"/library/shows/episode.webm", FileTypeVideo},
		{"song.mp3", FileTypeAudio},
		{"audio.FLAC", FileTypeAudio},
		{"track.opus", FileTypeAudio},
		{"movie.srt", FileTypeSubtitle},
		{"movie.en.vtt", FileTypeSubtitle},
		{"document.txt", FileTypeOther},
		{"image.jpg", FileTypeOther},
		{"noextension", FileTypeOther},
		{"", FileTypeOther},
	}

	for _, tt := range tests {
		if got := GetFileType(tt.path); got != tt.expected {
			t.Errorf("GetFileType(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestIsMediaFile(t *testing.T) {
	t.Parallel()

	if !IsMediaFile("movie.mp4") {
		t.Error("expected movie.mp4 to be a media file")
	}
	if !IsMediaFile("song.flac") {
		t.Error("expected song.flac to be a media file")
	}
	if IsMediaFile("movie.srt") {
		t.Error("subtitle files are sidecars, not media files")
	}
	if IsMediaFile("notes.txt") {
		t.Error("expected notes.txt to not be a media file")
	}
}

// TestParseMediaKind tests that unknown stored values fail to decode instead
// of falling back to a default kind.
func TestParseMediaKind(t *testing.T) {
	t.Parallel()

	valid := []string{"movie", "tv_episode", "music", "video", "audio"}
	for _, s := range valid {
		kind, err := ParseMediaKind(s)
		if err != nil {
			t.Errorf("ParseMediaKind(%q) returned error: %v", s, err)
		}
		if kind.String() != s {
			t.Errorf("ParseMediaKind(%q) = %q, want round-trip", s, kind)
		}
	}

	for _, s := range []string{"", "Movie", "tv", "podcast"} {
		if _, err := ParseMediaKind(s); err == nil {
			t.Errorf("ParseMediaKind(%q) should fail", s)
		}
	}
}
