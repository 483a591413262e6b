package database

import (
	"database/sql"
	"fmt"
	"time"
)

// UpdatePosition records the resume point for a media record, creating the
// playback row on first use. Position and duration are in seconds.
func (d *Database) UpdatePosition(mediaID, position, duration int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ts := now()
	_, err := d.db.Exec(
		`INSERT INTO playback_state (media_id, position, duration, last_played, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(media_id) DO UPDATE SET
			position = excluded.position,
			duration = excluded.duration,
			last_played = excluded.last_played,
			updated_at = excluded.updated_at`,
		mediaID, position, nullInt64(duration), ts, ts)
	if err != nil {
		return fmt.Errorf("failed to update playback position: %w", err)
	}
	return nil
}

// MarkWatched flags the record as watched, bumps the watch count, resets the
// resume point, and appends a history entry.
func (d *Database) MarkWatched(mediaID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin watch update: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	var durationWatched sql.NullInt64
	tx.QueryRow(`SELECT position FROM playback_state WHERE media_id = ?`, mediaID).
		Scan(&durationWatched)

	if _, err := tx.Exec(
		`INSERT INTO playback_state (media_id, position, watched, watch_count, last_played, updated_at)
		 VALUES (?, 0, 1, 1, ?, ?)
		 ON CONFLICT(media_id) DO UPDATE SET
			position = 0,
			watched = 1,
			watch_count = watch_count + 1,
			last_played = excluded.last_played,
			updated_at = excluded.updated_at`,
		mediaID, ts, ts); err != nil {
		return fmt.Errorf("failed to mark watched: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO playback_history (media_id, position, duration_watched, played_at)
		 VALUES (?, 0, ?, ?)`,
		mediaID, durationWatched.Int64, ts); err != nil {
		return fmt.Errorf("failed to record watch history: %w", err)
	}

	return tx.Commit()
}

// MarkUnwatched clears the watched flag without touching the watch count.
func (d *Database) MarkUnwatched(mediaID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(
		`UPDATE playback_state SET watched = 0, updated_at = ? WHERE media_id = ?`,
		now(), mediaID)
	if err != nil {
		return fmt.Errorf("failed to mark unwatched: %w", err)
	}
	return nil
}

// GetPlaybackState returns the playback row for the record, or nil when it
// has never been played.
func (d *Database) GetPlaybackState(mediaID int64) (*PlaybackState, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var (
		s          PlaybackState
		duration   sql.NullInt64
		lastPlayed sql.NullString
		updatedAt  string
	)
	err := d.db.QueryRow(
		`SELECT id, media_id, position, duration, watched, watch_count, last_played, updated_at
		 FROM playback_state WHERE media_id = ?`, mediaID).
		Scan(&s.ID, &s.MediaID, &s.Position, &duration, &s.Watched,
			&s.WatchCount, &lastPlayed, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read playback state: %w", err)
	}

	s.Duration = duration.Int64
	if lastPlayed.Valid {
		if t, err := time.Parse(time.RFC3339, lastPlayed.String); err == nil {
			s.LastPlayed = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		s.UpdatedAt = t
	}
	return &s, nil
}

// GetInProgress lists records with a saved resume point, most recently
// played first.
func (d *Database) GetInProgress(limit int) ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryMedia(
		`SELECT `+prefixedMediaColumns("m")+`
		 FROM media_files m
		 JOIN playback_state p ON p.media_id = m.id
		 WHERE m.is_deleted = 0 AND p.position > 0 AND p.watched = 0
		 ORDER BY p.last_played DESC
		 LIMIT ?`, limit)
}

// GetRecentlyPlayed lists the most recently played live records.
func (d *Database) GetRecentlyPlayed(limit int) ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryMedia(
		`SELECT `+prefixedMediaColumns("m")+`
		 FROM media_files m
		 JOIN playback_state p ON p.media_id = m.id
		 WHERE m.is_deleted = 0 AND p.last_played IS NOT NULL
		 ORDER BY p.last_played DESC
		 LIMIT ?`, limit)
}

// GetWatchStats aggregates playback activity across the library.
func (d *Database) GetWatchStats() (*WatchStats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var stats WatchStats
	err := d.db.QueryRow(
		`SELECT
			COUNT(CASE WHEN watched = 1 THEN 1 END),
			COUNT(CASE WHEN watched = 0 AND position > 0 THEN 1 END),
			COALESCE(SUM(watch_count), 0)
		 FROM playback_state`).
		Scan(&stats.WatchedCount, &stats.InProgressCount, &stats.TotalPlays)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate watch stats: %w", err)
	}

	if err := d.db.QueryRow(
		`SELECT COALESCE(SUM(duration_watched), 0) FROM playback_history`).
		Scan(&stats.SecondsWatched); err != nil {
		return nil, fmt.Errorf("failed to sum watch history: %w", err)
	}
	return &stats, nil
}
