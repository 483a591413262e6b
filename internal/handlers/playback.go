package handlers

import (
	"net/http"

	"media-vault/internal/logging"
)

// positionRequest is the body for playback position updates.
type positionRequest struct {
	Position int64 `json:"position"`
	Duration int64 `json:"duration"`
}

// UpdatePosition stores a resume point for a record.
func (h *Handlers) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}

	var req positionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid position payload", http.StatusBadRequest)
		return
	}
	if req.Position < 0 {
		writeJSONError(w, "position must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.db.UpdatePosition(rec.ID, req.Position, req.Duration); err != nil {
		logging.Error("Failed to update position for %d: %v", rec.ID, err)
		writeJSONError(w, "failed to update position", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "ok")
}

// GetPlaybackState returns the resume point and watch flags for a record.
// A record that was never played yields an empty state, not an error.
func (h *Handlers) GetPlaybackState(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}

	state, err := h.db.GetPlaybackState(rec.ID)
	if err != nil {
		logging.Error("Failed to load playback state for %d: %v", rec.ID, err)
		writeJSONError(w, "failed to load playback state", http.StatusInternalServerError)
		return
	}
	if state == nil {
		writeJSON(w, map[string]interface{}{"media_id": rec.ID, "position": 0, "watched": false})
		return
	}
	writeJSON(w, state)
}

// MarkWatched flags a record as watched and logs the watch event.
func (h *Handlers) MarkWatched(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}
	if err := h.db.MarkWatched(rec.ID); err != nil {
		logging.Error("Failed to mark %d watched: %v", rec.ID, err)
		writeJSONError(w, "failed to mark watched", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "watched")
}

// MarkUnwatched clears the watched flag on a record.
func (h *Handlers) MarkUnwatched(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.mediaByID(w, r)
	if !ok {
		return
	}
	if err := h.db.MarkUnwatched(rec.ID); err != nil {
		logging.Error("Failed to mark %d unwatched: %v", rec.ID, err)
		writeJSONError(w, "failed to mark unwatched", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "unwatched")
}

// GetInProgress lists partially watched records, most recent first.
func (h *Handlers) GetInProgress(w http.ResponseWriter, r *http.Request) {
	records, err := h.db.GetInProgress(queryInt(r, "limit", 20))
	if err != nil {
		logging.Error("Failed to list in-progress media: %v", err)
		writeJSONError(w, "failed to list in-progress media", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// GetRecentlyPlayed lists recently played records.
func (h *Handlers) GetRecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	records, err := h.db.GetRecentlyPlayed(queryInt(r, "limit", 20))
	if err != nil {
		logging.Error("Failed to list recently played media: %v", err)
		writeJSONError(w, "failed to list recently played media", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}
