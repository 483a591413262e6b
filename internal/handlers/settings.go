package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"media-vault/internal/logging"
)

// GetSettings returns every stored setting.
func (h *Handlers) GetSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := h.db.GetAllSettings()
	if err != nil {
		logging.Error("Failed to load settings: %v", err)
		writeJSONError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

// GetSetting returns one setting by key.
func (h *Handlers) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	value, err := h.db.GetSetting(key)
	if err != nil {
		logging.Error("Failed to load setting %s: %v", key, err)
		writeJSONError(w, "failed to load setting", http.StatusInternalServerError)
		return
	}
	if value == "" {
		writeJSONError(w, "setting not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"key": key, "value": value})
}

// settingRequest is the body for setting updates.
type settingRequest struct {
	Value string `json:"value"`
}

// SetSetting stores a setting value.
func (h *Handlers) SetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	var req settingRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid setting payload", http.StatusBadRequest)
		return
	}
	if err := h.db.SetSetting(key, req.Value); err != nil {
		logging.Error("Failed to store setting %s: %v", key, err)
		writeJSONError(w, "failed to store setting", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"key": key, "value": req.Value})
}
