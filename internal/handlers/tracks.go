package handlers

import (
	"errors"
	"net/http"

	"media-vault/internal/database"
	"media-vault/internal/logging"
)

// GetSubtitles lists the subtitle tracks attached to a record.
func (h *Handlers) GetSubtitles(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}
	tracks, err := h.db.GetSubtitleTracks(rec.ID)
	if err != nil {
		logging.Error("Failed to list subtitles for %d: %v", rec.ID, err)
		writeJSONError(w, "failed to list subtitles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tracks)
}

// DiscoverSubtitles rescans the record's directory for sidecar subtitles.
func (h *Handlers) DiscoverSubtitles(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}
	found, err := h.db.DiscoverSubtitles(rec.ID, rec.FilePath)
	if err != nil {
		logging.Error("Subtitle discovery failed for %d: %v", rec.ID, err)
		writeJSONError(w, "subtitle discovery failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"found": len(found), "tracks": found})
}

// DeleteSubtitle removes a registered subtitle track. The sidecar file on
// disk is left alone.
func (h *Handlers) DeleteSubtitle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.DeleteSubtitleTrack(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "subtitle track not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to delete subtitle %d: %v", id, err)
		writeJSONError(w, "failed to delete subtitle", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "deleted")
}

// GetAudioTracks lists the audio tracks of a record.
func (h *Handlers) GetAudioTracks(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}
	tracks, err := h.db.GetAudioTracks(rec.ID)
	if err != nil {
		logging.Error("Failed to list audio tracks for %d: %v", rec.ID, err)
		writeJSONError(w, "failed to list audio tracks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tracks)
}
