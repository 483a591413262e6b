package database

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"media-vault/internal/logging"
)

// Backup writes a compacted snapshot of the catalog to destPath using
// VACUUM INTO. The destination must not already exist.
func (d *Database) Backup(destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("backup destination %s already exists", destPath)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, err := d.db.Exec(`VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	logging.Info("Backup written to %s", destPath)
	return nil
}

// Restore validates the backup at srcPath and stages it next to the live
// catalog. The staged file replaces the live one on the next startup, so
// the running process keeps a consistent view until restart.
func (d *Database) Restore(srcPath string) error {
	if err := validateBackup(srcPath); err != nil {
		return err
	}

	staged := d.path + ".restore"
	if err := copyFile(srcPath, staged); err != nil {
		return fmt.Errorf("failed to stage restore: %w", err)
	}
	logging.Info("Restore staged at %s; restart to apply", staged)
	return nil
}

// validateBackup opens the candidate read-only and checks that it is an
// intact catalog before it can be staged over the live file.
func validateBackup(path string) error {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("backup integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup is corrupt: %s", result)
	}

	var version int64
	err = db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("backup is not a media catalog: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("backup schema v%d is newer than supported v%d", version, schemaVersion)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
