package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-vault/internal/logging"
	"media-vault/internal/mediatypes"
)

// AddSubtitleTrack registers an external subtitle file for a media record,
// replacing language and label if the path is already known.
func (d *Database) AddSubtitleTrack(mediaID int64, filePath, language, label string) (*SubtitleTrack, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(
		`INSERT INTO subtitle_tracks (media_id, file_path, language, label, is_external)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT(media_id, file_path) DO UPDATE SET
			language = excluded.language,
			label = excluded.label`,
		mediaID, filePath, nullString(language), nullString(label))
	if err != nil {
		return nil, fmt.Errorf("failed to add subtitle track: %w", err)
	}

	var t SubtitleTrack
	var lang, lbl sql.NullString
	err = d.db.QueryRow(
		`SELECT id, media_id, file_path, language, label, is_external
		 FROM subtitle_tracks WHERE media_id = ? AND file_path = ?`,
		mediaID, filePath).
		Scan(&t.ID, &t.MediaID, &t.FilePath, &lang, &lbl, &t.IsExternal)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle track: %w", err)
	}
	t.Language = lang.String
	t.Label = lbl.String
	return &t, nil
}

// GetSubtitleTracks lists the registered subtitles for a media record.
func (d *Database) GetSubtitleTracks(mediaID int64) ([]SubtitleTrack, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(
		`SELECT id, media_id, file_path, language, label, is_external
		 FROM subtitle_tracks WHERE media_id = ? ORDER BY file_path`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtitle tracks: %w", err)
	}
	defer rows.Close()

	var tracks []SubtitleTrack
	for rows.Next() {
		var t SubtitleTrack
		var lang, lbl sql.NullString
		if err := rows.Scan(&t.ID, &t.MediaID, &t.FilePath, &lang, &lbl, &t.IsExternal); err != nil {
			return nil, err
		}
		t.Language = lang.String
		t.Label = lbl.String
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// DeleteSubtitleTrack removes one registered subtitle.
func (d *Database) DeleteSubtitleTrack(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.Exec(`DELETE FROM subtitle_tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subtitle track: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subtitle track %d: %w", id, ErrNotFound)
	}
	return nil
}

// DiscoverSubtitles looks next to the media file for sidecar subtitles
// sharing its stem (movie.srt, movie.en.srt) and registers each one. It
// returns the tracks found; a missing directory is not an error.
func (d *Database) DiscoverSubtitles(mediaID int64, mediaPath string) ([]SubtitleTrack, error) {
	dir := filepath.Dir(mediaPath)
	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Debug("Subtitle discovery skipped for %s: %v", mediaPath, err)
		return nil, nil
	}

	var found []SubtitleTrack
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if mediatypes.GetFileType(name) != mediatypes.FileTypeSubtitle {
			continue
		}
		if !strings.HasPrefix(name, stem) {
			continue
		}

		language := subtitleLanguage(name, stem)
		track, err := d.AddSubtitleTrack(mediaID, filepath.Join(dir, name), language, "")
		if err != nil {
			return found, err
		}
		found = append(found, *track)
	}
	return found, nil
}

// subtitleLanguage extracts the language code from a sidecar name like
// "movie.en.srt". Anything that is not a 2 or 3 letter run between the stem
// and the extension yields "".
func subtitleLanguage(name, stem string) string {
	middle := strings.TrimSuffix(strings.TrimPrefix(name, stem), filepath.Ext(name))
	middle = strings.Trim(middle, "._- ")
	if len(middle) < 2 || len(middle) > 3 {
		return ""
	}
	for _, r := range middle {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return ""
		}
	}
	return strings.ToLower(middle)
}

// ReplaceAudioTracks swaps the stored audio track list for a media record,
// as reported by the most recent probe.
func (d *Database) ReplaceAudioTracks(mediaID int64, tracks []AudioTrack) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin track update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM audio_tracks WHERE media_id = ?`, mediaID); err != nil {
		return fmt.Errorf("failed to clear audio tracks: %w", err)
	}
	for _, t := range tracks {
		if _, err := tx.Exec(
			`INSERT INTO audio_tracks (media_id, track_index, language, codec, channels, label)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			mediaID, t.Index, nullString(t.Language), nullString(t.Codec),
			nullInt(t.Channels), nullString(t.Label)); err != nil {
			return fmt.Errorf("failed to insert audio track: %w", err)
		}
	}
	return tx.Commit()
}

// GetAudioTracks lists the stored audio tracks for a media record.
func (d *Database) GetAudioTracks(mediaID int64) ([]AudioTrack, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(
		`SELECT id, media_id, track_index, language, codec, channels, label
		 FROM audio_tracks WHERE media_id = ? ORDER BY track_index`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audio tracks: %w", err)
	}
	defer rows.Close()

	var tracks []AudioTrack
	for rows.Next() {
		var t AudioTrack
		var lang, codec, label sql.NullString
		var channels sql.NullInt64
		if err := rows.Scan(&t.ID, &t.MediaID, &t.Index, &lang, &codec, &channels, &label); err != nil {
			return nil, err
		}
		t.Language = lang.String
		t.Codec = codec.String
		t.Channels = int(channels.Int64)
		t.Label = label.String
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
