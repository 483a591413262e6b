package database

import (
	"time"

	"media-vault/internal/mediatypes"
)

// MediaRecord is one cataloged file. Zero values mean "unknown" for the
// technical fields; SeasonNumber and EpisodeNumber are pointers because a
// season 0 (specials) is meaningful.
type MediaRecord struct {
	ID            int64                `json:"id"`
	FilePath      string               `json:"file_path"`
	FileHash      string               `json:"file_hash"`
	FileName      string               `json:"file_name"`
	FileSize      int64                `json:"file_size"`
	Kind          mediatypes.MediaKind `json:"media_type"`
	Duration      int64                `json:"duration,omitempty"`
	Codec         string               `json:"codec,omitempty"`
	Resolution    string               `json:"resolution,omitempty"`
	Bitrate       int64                `json:"bitrate,omitempty"`
	Framerate     float64              `json:"framerate,omitempty"`
	AudioCodec    string               `json:"audio_codec,omitempty"`
	AudioChannels int                  `json:"audio_channels,omitempty"`
	Title         string               `json:"title,omitempty"`
	Year          int                  `json:"year,omitempty"`
	SeasonNumber  *int                 `json:"season_number,omitempty"`
	EpisodeNumber *int                 `json:"episode_number,omitempty"`
	IndexedAt     time.Time            `json:"indexed_at"`
	LastModified  time.Time            `json:"last_modified"`
	IsDeleted     bool                 `json:"is_deleted"`
	ExtraMetadata map[string]string    `json:"extra_metadata,omitempty"`
}

// PlaybackState is the resume point and watch flags for one media record.
type PlaybackState struct {
	ID         int64      `json:"id"`
	MediaID    int64      `json:"media_id"`
	Position   int64      `json:"position"`
	Duration   int64      `json:"duration,omitempty"`
	Watched    bool       `json:"watched"`
	WatchCount int        `json:"watch_count"`
	LastPlayed *time.Time `json:"last_played,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Playlist types. Manual playlists hold explicit ordered items; smart
// playlists are defined by stored rules evaluated at read time. Auto
// playlists are system-maintained manual lists; nothing generates them yet
// but the schema admits them.
const (
	PlaylistManual = "manual"
	PlaylistSmart  = "smart"
	PlaylistAuto   = "auto"
)

type Playlist struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"playlist_type"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaylistRule is one stored predicate of a smart playlist. Field, Operator,
// and Value are kept as entered; validation happens when the rule is
// compiled, and rules that fail to compile match nothing.
type PlaylistRule struct {
	ID         int64  `json:"id"`
	PlaylistID int64  `json:"playlist_id"`
	Field      string `json:"field"`
	Operator   string `json:"operator"`
	Value      string `json:"value"`
}

type Collection struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type SubtitleTrack struct {
	ID         int64  `json:"id"`
	MediaID    int64  `json:"media_id"`
	FilePath   string `json:"file_path"`
	Language   string `json:"language,omitempty"`
	Label      string `json:"label,omitempty"`
	IsExternal bool   `json:"is_external"`
}

type AudioTrack struct {
	ID       int64  `json:"id"`
	MediaID  int64  `json:"media_id"`
	Index    int    `json:"track_index"`
	Language string `json:"language,omitempty"`
	Codec    string `json:"codec,omitempty"`
	Channels int    `json:"channels,omitempty"`
	Label    string `json:"label,omitempty"`
}

// LibraryStats summarizes the catalog for the stats endpoint.
type LibraryStats struct {
	TotalFiles    int64            `json:"total_files"`
	TotalSize     int64            `json:"total_size"`
	TotalDuration int64            `json:"total_duration"`
	MissingFiles  int64            `json:"missing_files"`
	ByKind        map[string]int64 `json:"by_kind"`
}

// WatchStats summarizes playback activity.
type WatchStats struct {
	WatchedCount    int64 `json:"watched_count"`
	InProgressCount int64 `json:"in_progress_count"`
	TotalPlays      int64 `json:"total_plays"`
	SecondsWatched  int64 `json:"seconds_watched"`
}
