package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"media-vault/internal/logging"
	"media-vault/internal/mediatypes"
)

// mediaColumns is the canonical select list scanned by scanMediaRow.
const mediaColumns = `id, file_path, file_hash, file_name, file_size, media_type,
	duration, codec, resolution, bitrate, framerate, audio_codec, audio_channels,
	title, year, season_number, episode_number, indexed_at, last_modified,
	is_deleted, extra_metadata`

// prefixedMediaColumns qualifies the canonical select list with a table
// alias for joined queries.
func prefixedMediaColumns(alias string) string {
	cols := strings.Split(mediaColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// UpsertMedia inserts the record or refreshes the existing row keyed by
// FilePath. It reports whether a new row was created. On update the original
// indexed_at is preserved, is_deleted is cleared, and playback state is left
// untouched. The record's ID and IndexedAt are filled in on return.
func (d *Database) UpsertMedia(m *MediaRecord) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	extra, err := encodeExtra(m.ExtraMetadata)
	if err != nil {
		return false, err
	}

	var (
		existingID int64
		indexedAt  string
	)
	err = d.db.QueryRow(
		`SELECT id, indexed_at FROM media_files WHERE file_path = ?`,
		m.FilePath).Scan(&existingID, &indexedAt)

	switch {
	case err == sql.ErrNoRows:
		m.IndexedAt = time.Now().UTC()
		res, err := d.db.Exec(
			`INSERT INTO media_files (
				file_path, file_hash, file_name, file_size, media_type,
				duration, codec, resolution, bitrate, framerate,
				audio_codec, audio_channels, title, year,
				season_number, episode_number, indexed_at, last_modified,
				is_deleted, extra_metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
			m.FilePath, m.FileHash, m.FileName, m.FileSize, string(m.Kind),
			nullInt64(m.Duration), nullString(m.Codec), nullString(m.Resolution),
			nullInt64(m.Bitrate), nullFloat(m.Framerate),
			nullString(m.AudioCodec), nullInt(m.AudioChannels),
			nullString(m.Title), nullInt(m.Year),
			nullIntPtr(m.SeasonNumber), nullIntPtr(m.EpisodeNumber),
			m.IndexedAt.Format(time.RFC3339), m.LastModified.UTC().Format(time.RFC3339),
			extra)
		if err != nil {
			return false, fmt.Errorf("failed to insert media record: %w", err)
		}
		m.ID, _ = res.LastInsertId()
		return true, nil

	case err != nil:
		return false, fmt.Errorf("failed to look up media record: %w", err)
	}

	// Existing row: refresh everything except indexed_at and playback.
	_, err = d.db.Exec(
		`UPDATE media_files SET
			file_hash = ?, file_name = ?, file_size = ?, media_type = ?,
			duration = ?, codec = ?, resolution = ?, bitrate = ?, framerate = ?,
			audio_codec = ?, audio_channels = ?, title = ?, year = ?,
			season_number = ?, episode_number = ?, last_modified = ?,
			is_deleted = 0, extra_metadata = ?
		WHERE id = ?`,
		m.FileHash, m.FileName, m.FileSize, string(m.Kind),
		nullInt64(m.Duration), nullString(m.Codec), nullString(m.Resolution),
		nullInt64(m.Bitrate), nullFloat(m.Framerate),
		nullString(m.AudioCodec), nullInt(m.AudioChannels),
		nullString(m.Title), nullInt(m.Year),
		nullIntPtr(m.SeasonNumber), nullIntPtr(m.EpisodeNumber),
		m.LastModified.UTC().Format(time.RFC3339), extra,
		existingID)
	if err != nil {
		return false, fmt.Errorf("failed to update media record: %w", err)
	}

	m.ID = existingID
	if t, perr := time.Parse(time.RFC3339, indexedAt); perr == nil {
		m.IndexedAt = t
	}
	return false, nil
}

// MarkMissing flags every non-deleted record whose path was not observed in
// the latest scan. Records for observed paths are left alone. It returns the
// number of records newly flagged.
func (d *Database) MarkMissing(observed []string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin sweep: %w", err)
	}
	defer tx.Rollback()

	// A temp table sidesteps the bound-parameter limit on large libraries.
	if _, err := tx.Exec(`CREATE TEMP TABLE observed_paths (path TEXT PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("failed to create sweep table: %w", err)
	}
	for _, path := range observed {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO observed_paths (path) VALUES (?)`, path); err != nil {
			return 0, fmt.Errorf("failed to record observed path: %w", err)
		}
	}

	res, err := tx.Exec(
		`UPDATE media_files SET is_deleted = 1
		 WHERE is_deleted = 0
		   AND file_path NOT IN (SELECT path FROM observed_paths)`)
	if err != nil {
		return 0, fmt.Errorf("failed to flag missing files: %w", err)
	}
	marked, _ := res.RowsAffected()

	if _, err := tx.Exec(`DROP TABLE observed_paths`); err != nil {
		return 0, fmt.Errorf("failed to drop sweep table: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}

	if marked > 0 {
		logging.Info("Marked %d files as missing", marked)
	}
	return marked, nil
}

// MarkMissingUnder is MarkMissing restricted to records whose path lives
// under root, for partial rescans that must not flag the rest of the
// library.
func (d *Database) MarkMissingUnder(root string, observed []string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin sweep: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE observed_paths (path TEXT PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("failed to create sweep table: %w", err)
	}
	for _, path := range observed {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO observed_paths (path) VALUES (?)`, path); err != nil {
			return 0, fmt.Errorf("failed to record observed path: %w", err)
		}
	}

	prefix := strings.TrimSuffix(root, "/") + "/"
	res, err := tx.Exec(
		`UPDATE media_files SET is_deleted = 1
		 WHERE is_deleted = 0
		   AND file_path LIKE ? ESCAPE '\'
		   AND file_path NOT IN (SELECT path FROM observed_paths)`,
		escapeLike(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to flag missing files: %w", err)
	}
	marked, _ := res.RowsAffected()

	if _, err := tx.Exec(`DROP TABLE observed_paths`); err != nil {
		return 0, fmt.Errorf("failed to drop sweep table: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}

	if marked > 0 {
		logging.Info("Marked %d files under %s as missing", marked, root)
	}
	return marked, nil
}

// escapeLike escapes LIKE wildcards in a literal prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// GetMediaByID returns the record or nil when it does not exist.
func (d *Database) GetMediaByID(id int64) (*MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRow(
		`SELECT `+mediaColumns+` FROM media_files WHERE id = ?`, id)
	m, err := scanMediaRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// GetMediaByPath returns the record for an absolute file path, or nil.
func (d *Database) GetMediaByPath(path string) (*MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRow(
		`SELECT `+mediaColumns+` FROM media_files WHERE file_path = ?`, path)
	m, err := scanMediaRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// GetAllMedia lists every live record, newest first.
func (d *Database) GetAllMedia() ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryMedia(
		`SELECT ` + mediaColumns + ` FROM media_files
		 WHERE is_deleted = 0
		 ORDER BY indexed_at DESC, id DESC`)
}

// GetMediaByKind lists live records of one media kind, newest first.
func (d *Database) GetMediaByKind(kind mediatypes.MediaKind) ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryMedia(
		`SELECT `+mediaColumns+` FROM media_files
		 WHERE is_deleted = 0 AND media_type = ?
		 ORDER BY indexed_at DESC, id DESC`, string(kind))
}

// SearchMedia matches the query as a substring of title or file name.
func (d *Database) SearchMedia(query string) ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pattern := "%" + query + "%"
	return d.queryMedia(
		`SELECT `+mediaColumns+` FROM media_files
		 WHERE is_deleted = 0 AND (title LIKE ? OR file_name LIKE ?)
		 ORDER BY indexed_at DESC, id DESC`, pattern, pattern)
}

// GetMissingMedia lists records flagged by the sweep, for review or cleanup.
func (d *Database) GetMissingMedia() ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryMedia(
		`SELECT ` + mediaColumns + ` FROM media_files
		 WHERE is_deleted = 1
		 ORDER BY file_path`)
}

// PurgeMissing permanently deletes records flagged as missing, cascading to
// playback state, tracks, and playlist membership.
func (d *Database) PurgeMissing() (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.Exec(`DELETE FROM media_files WHERE is_deleted = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge missing files: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// GetMediaNeedingMetadata lists live records that still lack probed
// technical metadata, for the batch extractor.
func (d *Database) GetMediaNeedingMetadata() ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryMedia(
		`SELECT ` + mediaColumns + ` FROM media_files
		 WHERE is_deleted = 0 AND (duration IS NULL OR codec IS NULL)
		 ORDER BY id`)
}

// GetLibraryStats aggregates counts and sizes over live records.
func (d *Database) GetLibraryStats() (*LibraryStats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := &LibraryStats{ByKind: map[string]int64{}}
	err := d.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(file_size), 0), COALESCE(SUM(duration), 0)
		 FROM media_files WHERE is_deleted = 0`).
		Scan(&stats.TotalFiles, &stats.TotalSize, &stats.TotalDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate library stats: %w", err)
	}

	if err := d.db.QueryRow(
		`SELECT COUNT(*) FROM media_files WHERE is_deleted = 1`).
		Scan(&stats.MissingFiles); err != nil {
		return nil, fmt.Errorf("failed to count missing files: %w", err)
	}

	rows, err := d.db.Query(
		`SELECT media_type, COUNT(*) FROM media_files
		 WHERE is_deleted = 0 GROUP BY media_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count media kinds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats.ByKind[kind] = count
	}
	return stats, rows.Err()
}

// queryMedia runs a query whose select list is mediaColumns and scans all
// rows. Callers must hold at least the read lock.
func (d *Database) queryMedia(query string, args ...interface{}) ([]MediaRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("media query failed: %w", err)
	}
	defer rows.Close()

	var records []MediaRecord
	for rows.Next() {
		m, err := scanMediaRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *m)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMediaRow(row rowScanner) (*MediaRecord, error) {
	var (
		m             MediaRecord
		kind          string
		duration      sql.NullInt64
		codec         sql.NullString
		resolution    sql.NullString
		bitrate       sql.NullInt64
		framerate     sql.NullFloat64
		audioCodec    sql.NullString
		audioChannels sql.NullInt64
		title         sql.NullString
		year          sql.NullInt64
		season        sql.NullInt64
		episode       sql.NullInt64
		indexedAt     string
		lastModified  string
		extra         sql.NullString
	)

	err := row.Scan(&m.ID, &m.FilePath, &m.FileHash, &m.FileName, &m.FileSize,
		&kind, &duration, &codec, &resolution, &bitrate, &framerate,
		&audioCodec, &audioChannels, &title, &year, &season, &episode,
		&indexedAt, &lastModified, &m.IsDeleted, &extra)
	if err != nil {
		return nil, err
	}

	// A kind this build does not know is a hard error, not a silent default.
	m.Kind, err = mediatypes.ParseMediaKind(kind)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", m.ID, err)
	}

	m.Duration = duration.Int64
	m.Codec = codec.String
	m.Resolution = resolution.String
	m.Bitrate = bitrate.Int64
	m.Framerate = framerate.Float64
	m.AudioCodec = audioCodec.String
	m.AudioChannels = int(audioChannels.Int64)
	m.Title = title.String
	m.Year = int(year.Int64)
	if season.Valid {
		v := int(season.Int64)
		m.SeasonNumber = &v
	}
	if episode.Valid {
		v := int(episode.Int64)
		m.EpisodeNumber = &v
	}
	if t, err := time.Parse(time.RFC3339, indexedAt); err == nil {
		m.IndexedAt = t
	}
	if t, err := time.Parse(time.RFC3339, lastModified); err == nil {
		m.LastModified = t
	}
	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &m.ExtraMetadata); err != nil {
			return nil, fmt.Errorf("record %d: malformed extra metadata: %w", m.ID, err)
		}
	}
	return &m, nil
}

func encodeExtra(extra map[string]string) (sql.NullString, error) {
	if len(extra) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode extra metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullIntPtr(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
