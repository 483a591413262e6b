package playlist

import (
	"bytes"
	"strings"
	"testing"

	"media-vault/internal/database"
)

func TestExportM3U(t *testing.T) {
	t.Parallel()

	records := []database.MediaRecord{
		{Title: "The Matrix", FilePath: "/media/matrix.mp4", Duration: 8160},
		{FileName: "untitled.mkv", FilePath: "/media/untitled.mkv"},
	}

	var buf bytes.Buffer
	if err := ExportM3U(&buf, "Favorites", records); err != nil {
		t.Fatalf("ExportM3U: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"#EXTM3U",
		"#PLAYLIST:Favorites",
		"#EXTINF:8160,The Matrix",
		"/media/matrix.mp4",
		"#EXTINF:0,untitled.mkv",
		"/media/untitled.mkv",
	}
	if len(lines) != len(want) {
		t.Fatalf("output:\n%s\nwant %d lines", out, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExportM3USanitizesTitles(t *testing.T) {
	t.Parallel()

	records := []database.MediaRecord{
		{Title: "bad\n#EXTINF:0,forged", FilePath: "/media/x.mp4"},
	}
	var buf bytes.Buffer
	if err := ExportM3U(&buf, "", records); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "forged\n") {
		t.Error("newline in title forged an extra playlist line")
	}
}

func TestParseM3U(t *testing.T) {
	t.Parallel()

	input := `#EXTM3U
#PLAYLIST:Mix
#EXTINF:123,Song One
/media/song1.mp3

/media/song2.mp3
`
	paths, err := ParseM3U(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseM3U: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/media/song1.mp3" || paths[1] != "/media/song2.mp3" {
		t.Errorf("paths = %v", paths)
	}
}

func TestParseWPL(t *testing.T) {
	t.Parallel()

	input := `<?wpl version="1.0"?>
<smil>
  <head><title>Road Trip</title></head>
  <body>
    <seq>
      <media src="song1.mp3"/>
      <media src="albums\best\song2.mp3"/>
      <media src=""/>
    </seq>
  </body>
</smil>`

	title, paths, err := ParseWPL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseWPL: %v", err)
	}
	if title != "Road Trip" {
		t.Errorf("title = %q", title)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 entries", paths)
	}
	if !strings.HasSuffix(paths[1], "song2.mp3") || strings.Contains(paths[1], "\\") {
		t.Errorf("windows path not normalized: %q", paths[1])
	}
}

func TestParseWPLRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, _, err := ParseWPL(strings.NewReader("not xml at all")); err == nil {
		t.Error("garbage input should fail to parse")
	}
}
