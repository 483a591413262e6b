package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/dhowden/tag"

	"media-vault/internal/logging"
	"media-vault/internal/mediatypes"
)

// TechnicalMetadata is the best-effort result of probing a media file.
// Every field is optional; the zero value means "unknown" and a fully empty
// struct is a valid probe result.
type TechnicalMetadata struct {
	Duration      int64   // seconds
	Width         int
	Height        int
	Codec         string  // video codec
	AudioCodec    string
	Bitrate       int64   // kbps
	Framerate     float64
	AudioChannels int
	SampleRate    int

	// Tag-level metadata for audio files, carried into the record's
	// free-form metadata.
	Artist string
	Album  string
}

// ResolutionString renders the probed dimensions as "1920x1080", or ""
// when unknown.
func (m TechnicalMetadata) ResolutionString() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// IsComplete reports whether the fields the batch extractor cares about are
// already populated.
func (m TechnicalMetadata) IsComplete() bool {
	return m.Duration > 0 && m.Codec != ""
}

// Prober extracts technical metadata using ffprobe, with tag-header reading
// for audio files. A missing ffprobe binary degrades every probe to empty
// metadata instead of failing.
type Prober struct {
	ffprobePath string
	available   bool
}

// NewProber resolves the ffprobe binary. ffprobePath may be empty to search
// PATH.
func NewProber(ffprobePath string) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	resolved, err := exec.LookPath(ffprobePath)
	if err != nil {
		logging.Warn("ffprobe not found (%v); technical metadata will be empty", err)
		return &Prober{ffprobePath: ffprobePath}
	}
	return &Prober{ffprobePath: resolved, available: true}
}

// Available reports whether ffprobe was found at startup.
func (p *Prober) Available() bool {
	return p.available
}

// Probe returns whatever technical metadata can be extracted from the file.
// It never returns an error: any failure yields empty metadata so that a
// missing tool cannot fail a directory scan.
func (p *Prober) Probe(path string, fileType mediatypes.FileType) TechnicalMetadata {
	var meta TechnicalMetadata

	if p.available {
		if m, err := p.ffprobe(path); err == nil {
			meta = m
		} else {
			logging.Debug("ffprobe failed for %s: %v", path, err)
		}
	}

	if fileType == mediatypes.FileTypeAudio {
		readAudioTags(path, &meta)
	}

	return meta
}

// ffprobeOutput mirrors the subset of `ffprobe -print_format json` output
// the prober consumes.
type ffprobeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

func (p *Prober) ffprobe(path string) (TechnicalMetadata, error) {
	cmd := exec.Command(p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path)

	out, err := cmd.Output()
	if err != nil {
		return TechnicalMetadata{}, fmt.Errorf("ffprobe: %w", err)
	}

	var data ffprobeOutput
	if err := json.Unmarshal(out, &data); err != nil {
		return TechnicalMetadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var meta TechnicalMetadata
	for _, s := range data.Streams {
		switch s.CodecType {
		case "video":
			if meta.Codec == "" {
				meta.Codec = s.CodecName
				meta.Width = s.Width
				meta.Height = s.Height
				meta.Framerate = parseFramerate(s.RFrameRate)
			}
		case "audio":
			if meta.AudioCodec == "" {
				meta.AudioCodec = s.CodecName
				meta.AudioChannels = s.Channels
				if rate, err := strconv.Atoi(s.SampleRate); err == nil {
					meta.SampleRate = rate
				}
			}
		}
	}

	if data.Format.Duration != "" {
		if secs, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil {
			meta.Duration = int64(secs)
		}
	}
	if data.Format.BitRate != "" {
		if bps, err := strconv.ParseInt(data.Format.BitRate, 10, 64); err == nil {
			meta.Bitrate = bps / 1000
		}
	}

	return meta, nil
}

// parseFramerate converts ffprobe's rational "30000/1001" form.
func parseFramerate(r string) float64 {
	var num, den float64
	if _, err := fmt.Sscanf(r, "%f/%f", &num, &den); err != nil || den == 0 {
		return 0
	}
	return num / den
}

// readAudioTags fills artist/album from the file's tag header when present.
func readAudioTags(path string, meta *TechnicalMetadata) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	meta.Artist = t.Artist()
	meta.Album = t.Album()
}
