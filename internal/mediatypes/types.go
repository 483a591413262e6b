package mediatypes

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType is the scanner-level classification of a file, derived from its
// extension.
type FileType string

const (
	// FileTypeVideo represents a video container file.
	FileTypeVideo FileType = "video"
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeSubtitle represents an external subtitle file.
	FileTypeSubtitle FileType = "subtitle"
	// FileTypeOther represents an unsupported extension.
	FileTypeOther FileType = "other"
)

// MediaKind is the catalog-level classification stored on a media record.
type MediaKind string

const (
	// KindMovie is a video file that did not parse as a TV episode.
	KindMovie MediaKind = "movie"
	// KindTVEpisode is a file with season/episode markers in its name.
	KindTVEpisode MediaKind = "tv_episode"
	// KindMusic is an audio file without episode markers.
	KindMusic MediaKind = "music"
	// KindVideo is a generic video, kept for records classified before
	// movie/episode detection existed.
	KindVideo MediaKind = "video"
	// KindAudio is a generic audio record, analogous to KindVideo.
	KindAudio MediaKind = "audio"
)

// VideoExtensions maps lowercased extensions (with dot) to supported video
// formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
}

// AudioExtensions maps lowercased extensions to supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".aac":  true,
	".ogg":  true,
	".m4a":  true,
	".wma":  true,
	".opus": true,
}

// SubtitleExtensions maps lowercased extensions to supported subtitle
// formats.
var SubtitleExtensions = map[string]bool{
	".srt": true,
	".ass": true,
	".vtt": true,
	".sub": true,
}

// GetFileType classifies a path by its extension. Unrecognized extensions
// (and files without one) return FileTypeOther.
func GetFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case VideoExtensions[ext]:
		return FileTypeVideo
	case AudioExtensions[ext]:
		return FileTypeAudio
	case SubtitleExtensions[ext]:
		return FileTypeSubtitle
	default:
		return FileTypeOther
	}
}

// IsMediaFile reports whether the path has a video or audio extension.
// Subtitle files are sidecars, not media in their own right.
func IsMediaFile(path string) bool {
	t := GetFileType(path)
	return t == FileTypeVideo || t == FileTypeAudio
}

// ParseMediaKind decodes a stored media-kind string. Unknown values are a
// decode error rather than being silently reclassified.
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case KindMovie, KindTVEpisode, KindMusic, KindVideo, KindAudio:
		return MediaKind(s), nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

// String returns the stored representation of the kind.
func (k MediaKind) String() string {
	return string(k)
}

// FileType maps a catalog kind back to its scanner-level classification.
func (k MediaKind) FileType() FileType {
	switch k {
	case KindMusic, KindAudio:
		return FileTypeAudio
	default:
		return FileTypeVideo
	}
}
