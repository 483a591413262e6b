package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"media-vault/internal/database"
	"media-vault/internal/logging"
	"media-vault/internal/mediatypes"
	"media-vault/internal/streaming"
)

// ListMedia returns catalog records. Optional query parameters narrow the
// listing: kind=movie, search=matrix.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	var (
		records []database.MediaRecord
		err     error
	)

	switch {
	case r.URL.Query().Get("search") != "":
		records, err = h.db.SearchMedia(r.URL.Query().Get("search"))
	case r.URL.Query().Get("kind") != "":
		kind, parseErr := mediatypes.ParseMediaKind(r.URL.Query().Get("kind"))
		if parseErr != nil {
			writeJSONError(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		records, err = h.db.GetMediaByKind(kind)
	default:
		records, err = h.db.GetAllMedia()
	}

	if err != nil {
		logging.Error("Failed to list media: %v", err)
		writeJSONError(w, "failed to list media", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// GetMedia returns one record by ID.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}
	writeJSON(w, rec)
}

// FilterMedia applies structured filter criteria from the request body.
func (h *Handlers) FilterMedia(w http.ResponseWriter, r *http.Request) {
	var criteria database.FilterCriteria
	if err := decodeBody(r, &criteria); err != nil {
		writeJSONError(w, "invalid filter criteria", http.StatusBadRequest)
		return
	}

	records, err := h.db.FilterMedia(criteria)
	if err != nil {
		logging.Error("Failed to filter media: %v", err)
		writeJSONError(w, "failed to filter media", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// GetMissing lists records whose files have disappeared.
func (h *Handlers) GetMissing(w http.ResponseWriter, _ *http.Request) {
	records, err := h.db.GetMissingMedia()
	if err != nil {
		logging.Error("Failed to list missing media: %v", err)
		writeJSONError(w, "failed to list missing media", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// PurgeMissing permanently removes records flagged missing.
func (h *Handlers) PurgeMissing(w http.ResponseWriter, _ *http.Request) {
	purged, err := h.db.PurgeMissing()
	if err != nil {
		logging.Error("Failed to purge missing media: %v", err)
		writeJSONError(w, "failed to purge missing media", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int64{"purged": purged})
}

// StreamMedia serves the file behind a record with range support.
func (h *Handlers) StreamMedia(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}
	if rec.IsDeleted {
		writeJSONError(w, "file is missing on disk", http.StatusGone)
		return
	}

	err := streaming.ServeFile(w, r, rec.FilePath, streaming.DefaultConfig())
	if err != nil && !errors.Is(err, streaming.ErrClientGone) {
		if os.IsNotExist(err) {
			writeJSONError(w, "file is missing on disk", http.StatusGone)
			return
		}
		logging.Error("Failed to stream %s: %v", rec.FilePath, err)
	}
}

// GetThumbnail serves the record's thumbnail image.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}

	data, err := h.thumbGen.GetThumbnail(rec.FilePath, rec.Kind.FileType())
	if err != nil {
		logging.Debug("Thumbnail unavailable for %s: %v", rec.FilePath, err)
		writeJSONError(w, "thumbnail unavailable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write thumbnail response: %v", err)
	}
}

// StatsResponse combines library and watch statistics.
type StatsResponse struct {
	Library *database.LibraryStats `json:"library"`
	Watch   *database.WatchStats   `json:"watch"`
}

// GetStats returns library and watch statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	library, err := h.db.GetLibraryStats()
	if err != nil {
		logging.Error("Failed to get library stats: %v", err)
		writeJSONError(w, "failed to get stats", http.StatusInternalServerError)
		return
	}
	watch, err := h.db.GetWatchStats()
	if err != nil {
		logging.Error("Failed to get watch stats: %v", err)
		writeJSONError(w, "failed to get stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, StatsResponse{Library: library, Watch: watch})
}

// mediaByID resolves the {id} route variable to a record, writing the error
// response itself when the record cannot be served.
func (h *Handlers) mediaByID(w http.ResponseWriter, r *http.Request) (*database.MediaRecord, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	rec, err := h.db.GetMediaByID(id)
	if err != nil {
		if strings.Contains(err.Error(), "unknown media kind") {
			logging.Error("Corrupt record %d: %v", id, err)
			writeJSONError(w, "record is corrupt", http.StatusInternalServerError)
			return nil, false
		}
		logging.Error("Failed to load media %d: %v", id, err)
		writeJSONError(w, "failed to load media", http.StatusInternalServerError)
		return nil, false
	}
	if rec == nil {
		writeJSONError(w, "media not found", http.StatusNotFound)
		return nil, false
	}
	return rec, true
}
