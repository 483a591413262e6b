package database

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"media-vault/internal/logging"
)

const schemaVersion = 1

// Database wraps the SQLite handle. Writes take the exclusive lock so the
// catalog only ever has one writer; reads share it.
type Database struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// New opens (or creates) the catalog at path, applies any staged restore,
// and brings the schema up to date.
func New(path string) (*Database, error) {
	if err := applyStagedRestore(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps the WAL writer unambiguous alongside the mutex.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{db: db, path: path}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info("Database ready at %s (schema v%d)", path, schemaVersion)
	return d, nil
}

// applyStagedRestore swaps in a validated backup staged by Restore before
// the live file is opened.
func applyStagedRestore(path string) error {
	staged := path + ".restore"
	if _, err := os.Stat(staged); err != nil {
		return nil
	}
	logging.Info("Applying staged database restore from %s", staged)
	if err := os.Rename(staged, path); err != nil {
		return fmt.Errorf("failed to apply staged restore: %w", err)
	}
	return nil
}

// Close closes the underlying handle.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Close()
}

// Path returns the on-disk location of the catalog file.
func (d *Database) Path() string {
	return d.path
}

func (d *Database) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS media_files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_path TEXT NOT NULL UNIQUE,
			file_hash TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_size INTEGER NOT NULL,
			media_type TEXT NOT NULL,
			duration INTEGER,
			codec TEXT,
			resolution TEXT,
			bitrate INTEGER,
			framerate REAL,
			audio_codec TEXT,
			audio_channels INTEGER,
			title TEXT,
			year INTEGER,
			season_number INTEGER,
			episode_number INTEGER,
			indexed_at TEXT NOT NULL,
			last_modified TEXT NOT NULL,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			extra_metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_media_files_hash ON media_files(file_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_media_files_type ON media_files(media_type)`,
		`CREATE INDEX IF NOT EXISTS idx_media_files_title ON media_files(title)`,
		`CREATE INDEX IF NOT EXISTS idx_media_files_deleted ON media_files(is_deleted)`,

		`CREATE TABLE IF NOT EXISTS playback_state (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			media_id INTEGER NOT NULL UNIQUE REFERENCES media_files(id) ON DELETE CASCADE,
			position INTEGER NOT NULL DEFAULT 0,
			duration INTEGER,
			watched INTEGER NOT NULL DEFAULT 0,
			watch_count INTEGER NOT NULL DEFAULT 0,
			last_played TEXT,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS playback_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			media_id INTEGER NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
			position INTEGER NOT NULL DEFAULT 0,
			duration_watched INTEGER NOT NULL DEFAULT 0,
			played_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_playback_history_media ON playback_history(media_id)`,

		`CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			playlist_type TEXT NOT NULL DEFAULT 'manual'
				CHECK (playlist_type IN ('manual', 'smart', 'auto')),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS playlist_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			media_id INTEGER NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			added_at TEXT NOT NULL,
			UNIQUE (playlist_id, media_id)
		)`,

		`CREATE TABLE IF NOT EXISTS playlist_rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			field TEXT NOT NULL,
			operator TEXT NOT NULL,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS collections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS collection_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			media_id INTEGER NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
			added_at TEXT NOT NULL,
			UNIQUE (collection_id, media_id)
		)`,

		`CREATE TABLE IF NOT EXISTS subtitle_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			media_id INTEGER NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
			file_path TEXT NOT NULL,
			language TEXT,
			label TEXT,
			is_external INTEGER NOT NULL DEFAULT 1,
			UNIQUE (media_id, file_path)
		)`,

		`CREATE TABLE IF NOT EXISTS audio_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			media_id INTEGER NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
			track_index INTEGER NOT NULL,
			language TEXT,
			codec TEXT,
			channels INTEGER,
			label TEXT,
			UNIQUE (media_id, track_index)
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	if err := d.migrate(); err != nil {
		return err
	}
	return d.seedDefaultSettings()
}

// migrate records the current schema version and applies any newer numbered
// migrations. Version 1 is the base schema created by initialize.
func (d *Database) migrate() error {
	var current sql.NullInt64
	if err := d.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if current.Valid && current.Int64 > schemaVersion {
		return fmt.Errorf("database schema v%d is newer than supported v%d", current.Int64, schemaVersion)
	}

	for v := current.Int64 + 1; v <= schemaVersion; v++ {
		logging.Debug("Applying schema migration v%d", v)
		if _, err := d.db.Exec(
			`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`,
			v, now()); err != nil {
			return fmt.Errorf("failed to record schema v%d: %w", v, err)
		}
	}
	return nil
}

func (d *Database) seedDefaultSettings() error {
	defaults := map[string]string{
		"library_name":              "Media Vault",
		"watched_threshold_percent": "90",
		"subtitle_auto_discover":    "true",
		"metadata_auto_extract":     "true",
	}
	for key, value := range defaults {
		if _, err := d.db.Exec(
			`INSERT OR IGNORE INTO settings (key, value, updated_at) VALUES (?, ?, ?)`,
			key, value, now()); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", key, err)
		}
	}
	return nil
}

// now renders the canonical timestamp stored in every table.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}
