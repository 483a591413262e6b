package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"media-vault/internal/logging"
)

// CreateBackup snapshots the catalog into the database directory and
// returns the backup path.
func (h *Handlers) CreateBackup(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.Running() {
		writeJSONError(w, "cannot back up while a scan is running", http.StatusConflict)
		return
	}

	name := "backup-" + time.Now().UTC().Format("20060102-150405") + ".db"
	dest := filepath.Join(h.backupDir, name)

	if err := h.db.Backup(dest); err != nil {
		logging.Error("Backup failed: %v", err)
		writeJSONError(w, "backup failed", http.StatusInternalServerError)
		return
	}

	logging.Info("Backup written to %s", dest)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"path": dest})
}

// restoreRequest is the body for catalog restores.
type restoreRequest struct {
	Path string `json:"path"`
}

// RestoreBackup validates a backup file and stages it to replace the
// catalog on next startup. Nothing changes for the running process.
func (h *Handlers) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := decodeBody(r, &req); err != nil || req.Path == "" {
		writeJSONError(w, "restore requires a backup path", http.StatusBadRequest)
		return
	}

	if err := h.db.Restore(req.Path); err != nil {
		logging.Error("Restore of %s rejected: %v", req.Path, err)
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logging.Info("Restore staged from %s; restart to apply", req.Path)
	writeJSON(w, map[string]string{
		"status": "staged",
		"detail": "the backup will replace the catalog on next startup",
	})
}
