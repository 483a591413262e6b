package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"media-vault/internal/database"
	"media-vault/internal/logging"
	"media-vault/internal/playlist"
)

// ListPlaylists returns every playlist with item counts.
func (h *Handlers) ListPlaylists(w http.ResponseWriter, _ *http.Request) {
	playlists, err := h.db.GetPlaylists()
	if err != nil {
		logging.Error("Failed to list playlists: %v", err)
		writeJSONError(w, "failed to list playlists", http.StatusInternalServerError)
		return
	}
	writeJSON(w, playlists)
}

// playlistRequest is the body for playlist creation and updates.
type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"playlist_type"`
}

// CreatePlaylist creates a manual or smart playlist.
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid playlist payload", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = database.PlaylistManual
	}

	created, err := h.db.CreatePlaylist(req.Name, req.Description, req.Type)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, created)
}

// GetPlaylist returns one playlist by ID.
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := h.playlistByID(w, r)
	if !ok {
		return
	}
	writeJSON(w, pl)
}

// UpdatePlaylist renames a playlist.
func (h *Handlers) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req playlistRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid playlist payload", http.StatusBadRequest)
		return
	}
	if err := h.db.UpdatePlaylist(id, req.Name, req.Description); err != nil {
		h.writePlaylistError(w, id, err)
		return
	}
	writeJSONStatus(w, "updated")
}

// DeletePlaylist removes a playlist, its items, and its rules.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.DeletePlaylist(id); err != nil {
		h.writePlaylistError(w, id, err)
		return
	}
	writeJSONStatus(w, "deleted")
}

// GetPlaylistMedia resolves a playlist to its records. Smart playlists are
// evaluated from their rules.
func (h *Handlers) GetPlaylistMedia(w http.ResponseWriter, r *http.Request) {
	pl, ok := h.playlistByID(w, r)
	if !ok {
		return
	}
	records, err := h.db.GetPlaylistMedia(pl.ID)
	if err != nil {
		logging.Error("Failed to resolve playlist %d: %v", pl.ID, err)
		writeJSONError(w, "failed to resolve playlist", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// itemRequest is the body for playlist and collection item additions.
type itemRequest struct {
	MediaID int64 `json:"media_id"`
}

// AddPlaylistItem appends a record to a manual playlist.
func (h *Handlers) AddPlaylistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid item payload", http.StatusBadRequest)
		return
	}
	if err := h.db.AddPlaylistItem(id, req.MediaID); err != nil {
		h.writePlaylistError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSONStatus(w, "added")
}

// RemovePlaylistItem removes a record from a manual playlist.
func (h *Handlers) RemovePlaylistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	mediaID, err := pathID(r, "mediaId")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.RemovePlaylistItem(id, mediaID); err != nil {
		h.writePlaylistError(w, id, err)
		return
	}
	writeJSONStatus(w, "removed")
}

// reorderRequest is the body for playlist reordering.
type reorderRequest struct {
	MediaIDs []int64 `json:"media_ids"`
}

// ReorderPlaylist replaces the item order of a manual playlist.
func (h *Handlers) ReorderPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid reorder payload", http.StatusBadRequest)
		return
	}
	if err := h.db.ReorderPlaylist(id, req.MediaIDs); err != nil {
		h.writePlaylistError(w, id, err)
		return
	}
	writeJSONStatus(w, "reordered")
}

// ruleRequest is the body for smart playlist rule additions.
type ruleRequest struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// GetPlaylistRules lists the stored rules of a smart playlist.
func (h *Handlers) GetPlaylistRules(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	rules, err := h.db.GetPlaylistRules(id)
	if err != nil {
		logging.Error("Failed to list rules for playlist %d: %v", id, err)
		writeJSONError(w, "failed to list rules", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rules)
}

// AddPlaylistRule stores a rule on a smart playlist. The rule text is kept
// as entered; rules that fail to compile simply match nothing.
func (h *Handlers) AddPlaylistRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req ruleRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid rule payload", http.StatusBadRequest)
		return
	}
	rule, err := h.db.AddPlaylistRule(id, req.Field, req.Operator, req.Value)
	if err != nil {
		h.writePlaylistError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, rule)
}

// DeletePlaylistRule removes a stored rule.
func (h *Handlers) DeletePlaylistRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.DeletePlaylistRule(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "rule not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to delete rule %d: %v", id, err)
		writeJSONError(w, "failed to delete rule", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "deleted")
}

// ExportPlaylist writes the playlist as an M3U download.
func (h *Handlers) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, ok := h.playlistByID(w, r)
	if !ok {
		return
	}
	records, err := h.db.GetPlaylistMedia(pl.ID)
	if err != nil {
		logging.Error("Failed to resolve playlist %d for export: %v", pl.ID, err)
		writeJSONError(w, "failed to resolve playlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": pl.Name + ".m3u"}))
	if err := playlist.ExportM3U(w, pl.Name, records); err != nil {
		logging.Error("Failed to export playlist %d: %v", pl.ID, err)
	}
}

// importResponse reports the outcome of a playlist import.
type importResponse struct {
	Playlist *database.Playlist `json:"playlist"`
	Added    int                `json:"added"`
	Skipped  []string           `json:"skipped,omitempty"`
}

// ImportPlaylist creates a manual playlist from an uploaded M3U or WPL
// file. Entries that do not resolve to cataloged files are reported back
// and skipped.
func (h *Handlers) ImportPlaylist(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	var (
		paths []string
		err   error
	)
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "wpl":
		var title string
		title, paths, err = playlist.ParseWPL(r.Body)
		if name == "" {
			name = title
		}
	case "", "m3u":
		paths, err = playlist.ParseM3U(r.Body)
	default:
		writeJSONError(w, "unsupported playlist format", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeJSONError(w, fmt.Sprintf("failed to parse playlist: %v", err), http.StatusBadRequest)
		return
	}
	if name == "" {
		name = "Imported playlist"
	}

	created, err := h.db.CreatePlaylist(name, "", database.PlaylistManual)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importResponse{Playlist: created}
	for _, p := range paths {
		rec, err := h.resolveImportPath(p)
		if err != nil {
			logging.Error("Import lookup failed for %s: %v", p, err)
			writeJSONError(w, "import failed", http.StatusInternalServerError)
			return
		}
		if rec == nil {
			resp.Skipped = append(resp.Skipped, p)
			continue
		}
		if err := h.db.AddPlaylistItem(created.ID, rec.ID); err != nil {
			logging.Error("Import failed adding %s: %v", p, err)
			writeJSONError(w, "import failed", http.StatusInternalServerError)
			return
		}
		resp.Added++
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, resp)
}

// resolveImportPath matches a playlist entry against the catalog, first by
// exact path and then by file name for relative entries.
func (h *Handlers) resolveImportPath(p string) (*database.MediaRecord, error) {
	if rec, err := h.db.GetMediaByPath(p); err != nil || rec != nil {
		return rec, err
	}

	matches, err := h.db.SearchMedia(filepath.Base(p))
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].FileName == filepath.Base(p) {
			return &matches[i], nil
		}
	}
	return nil, nil
}

func (h *Handlers) playlistByID(w http.ResponseWriter, r *http.Request) (*database.Playlist, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	pl, err := h.db.GetPlaylist(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "playlist not found", http.StatusNotFound)
			return nil, false
		}
		logging.Error("Failed to load playlist %d: %v", id, err)
		writeJSONError(w, "failed to load playlist", http.StatusInternalServerError)
		return nil, false
	}
	return pl, true
}

// writePlaylistError maps playlist errors to HTTP responses.
func (h *Handlers) writePlaylistError(w http.ResponseWriter, id int64, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeJSONError(w, "playlist not found", http.StatusNotFound)
	case errors.Is(err, database.ErrSmartPlaylist), errors.Is(err, database.ErrManualPlaylist):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logging.Error("Playlist %d operation failed: %v", id, err)
		writeJSONError(w, "playlist operation failed", http.StatusInternalServerError)
	}
}
