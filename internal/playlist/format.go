package playlist

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"media-vault/internal/database"
)

// ExportM3U writes the records as an extended M3U playlist.
func ExportM3U(w io.Writer, name string, records []database.MediaRecord) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "#EXTM3U")
	if name != "" {
		fmt.Fprintf(bw, "#PLAYLIST:%s\n", sanitizeLine(name))
	}
	for _, m := range records {
		title := m.Title
		if title == "" {
			title = m.FileName
		}
		fmt.Fprintf(bw, "#EXTINF:%d,%s\n", m.Duration, sanitizeLine(title))
		fmt.Fprintln(bw, m.FilePath)
	}
	return bw.Flush()
}

// sanitizeLine strips newlines so a hostile title cannot inject playlist
// entries.
func sanitizeLine(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}

// ParseM3U reads an M3U playlist and returns its entry paths. Comment and
// directive lines are skipped.
func ParseM3U(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}
	return paths, nil
}

// wpl mirrors the Windows Media Player playlist format, a SMIL document
// with media src attributes.
type wpl struct {
	XMLName xml.Name `xml:"smil"`
	Head    struct {
		Title string `xml:"title"`
	} `xml:"head"`
	Body struct {
		Seq struct {
			Media []struct {
				Src string `xml:"src,attr"`
			} `xml:"media"`
		} `xml:"seq"`
	} `xml:"body"`
}

// ParseWPL reads a WPL playlist and returns its title and entry paths.
// Windows path separators are normalized.
func ParseWPL(r io.Reader) (string, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	var doc wpl
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("failed to parse wpl: %w", err)
	}

	var paths []string
	for _, media := range doc.Body.Seq.Media {
		if media.Src == "" {
			continue
		}
		paths = append(paths, filepath.FromSlash(strings.ReplaceAll(media.Src, "\\", "/")))
	}
	return doc.Head.Title, paths, nil
}
