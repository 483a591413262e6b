package handlers

import (
	"errors"
	"net/http"
	"strings"

	"media-vault/internal/indexer"
	"media-vault/internal/logging"
)

// TriggerScan starts a library scan in the background. An optional "dir"
// query parameter restricts the scan, and its sweep, to one root.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.indexer.Running() {
		writeJSONError(w, "a scan is already in progress", http.StatusConflict)
		return
	}

	dir := r.URL.Query().Get("dir")
	if dir != "" && !h.isConfiguredRoot(dir) {
		writeJSONError(w, "dir is not a configured media directory", http.StatusBadRequest)
		return
	}

	go func() {
		var err error
		if dir != "" {
			_, err = h.indexer.ScanDirectory(dir)
		} else {
			_, err = h.indexer.ScanLibrary(h.mediaDirs)
		}
		if err != nil && !errors.Is(err, indexer.ErrScanInProgress) {
			logging.Error("Background scan failed: %v", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	writeJSONStatus(w, "scan started")
}

// ScanStatus reports whether a scan is running.
func (h *Handlers) ScanStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]bool{"scanning": h.indexer.Running()})
}

// ExtractMetadata runs the batch metadata extractor for records that still
// lack probed details.
func (h *Handlers) ExtractMetadata(w http.ResponseWriter, _ *http.Request) {
	result, err := h.indexer.ExtractMissingMetadata()
	if err != nil {
		logging.Error("Metadata extraction failed: %v", err)
		writeJSONError(w, "metadata extraction failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// isConfiguredRoot accepts exact roots and subdirectories of them.
func (h *Handlers) isConfiguredRoot(dir string) bool {
	for _, root := range h.mediaDirs {
		if dir == root || strings.HasPrefix(dir, root+"/") {
			return true
		}
	}
	return false
}
