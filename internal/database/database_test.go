package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReopenExistingCatalog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.db")
	d, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	rec := testRecord("/media/movie.mp4")
	if _, err := d.UpsertMedia(rec); err != nil {
		t.Fatal(err)
	}
	d.Close()

	d, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()

	all, err := d.GetAllMedia()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("reopened catalog has %d records, want 1", len(all))
	}
}

func TestSettings(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	// Defaults are seeded on creation.
	v, err := d.GetSetting("library_name")
	if err != nil {
		t.Fatal(err)
	}
	if v == "" {
		t.Error("default library_name should be seeded")
	}

	if err := d.SetSetting("library_name", "Basement Archive"); err != nil {
		t.Fatal(err)
	}
	v, _ = d.GetSetting("library_name")
	if v != "Basement Archive" {
		t.Errorf("library_name = %q after update", v)
	}

	// Unknown keys read as empty, not as an error.
	v, err = d.GetSetting("no_such_key")
	if err != nil || v != "" {
		t.Errorf("unknown key = (%q, %v), want empty", v, err)
	}

	all, err := d.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if all["library_name"] != "Basement Archive" {
		t.Errorf("settings map = %v", all)
	}
}

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	livePath := filepath.Join(dir, "catalog.db")
	d, err := New(livePath)
	if err != nil {
		t.Fatal(err)
	}

	rec := testRecord("/media/movie.mp4")
	if _, err := d.UpsertMedia(rec); err != nil {
		t.Fatal(err)
	}

	backupPath := filepath.Join(dir, "backups", "catalog.bak")
	if err := d.Backup(backupPath); err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if err := d.Backup(backupPath); err == nil {
		t.Error("backing up onto an existing file should fail")
	}

	// Damage the live catalog, then restore.
	if _, err := d.UpsertMedia(testRecord("/media/junk.mp4")); err != nil {
		t.Fatal(err)
	}
	if err := d.Restore(backupPath); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	d.Close()

	// The staged file is applied on the next open.
	d, err = New(livePath)
	if err != nil {
		t.Fatalf("reopen after restore: %v", err)
	}
	defer d.Close()

	all, err := d.GetAllMedia()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].FilePath != "/media/movie.mp4" {
		t.Errorf("restored catalog = %v, want the single backed-up record", titles(all))
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	garbage := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(garbage, []byte("not a database"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := d.Restore(garbage); err == nil {
		t.Error("restoring a non-database file should fail validation")
	}
	if _, err := os.Stat(d.Path() + ".restore"); err == nil {
		t.Error("failed validation must not stage a restore")
	}
}
