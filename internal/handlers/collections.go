package handlers

import (
	"errors"
	"net/http"

	"media-vault/internal/database"
	"media-vault/internal/logging"
)

// ListCollections returns every collection with item counts.
func (h *Handlers) ListCollections(w http.ResponseWriter, _ *http.Request) {
	collections, err := h.db.GetCollections()
	if err != nil {
		logging.Error("Failed to list collections: %v", err)
		writeJSONError(w, "failed to list collections", http.StatusInternalServerError)
		return
	}
	writeJSON(w, collections)
}

// collectionRequest is the body for collection creation.
type collectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCollection creates a collection.
func (h *Handlers) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, "invalid collection payload", http.StatusBadRequest)
		return
	}

	created, err := h.db.CreateCollection(req.Name, req.Description)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, created)
}

// GetCollection returns one collection by ID.
func (h *Handlers) GetCollection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	collection, err := h.db.GetCollection(id)
	if err != nil {
		h.writeCollectionError(w, id, err)
		return
	}
	writeJSON(w, collection)
}

// DeleteCollection removes a collection and its memberships.
func (h *Handlers) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.DeleteCollection(id); err != nil {
		h.writeCollectionError(w, id, err)
		return
	}
	writeJSONStatus(w, "deleted")
}

// GetCollectionMedia lists the records in a collection.
func (h *Handlers) GetCollectionMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	records, err := h.db.GetCollectionMedia(id)
	if err != nil {
		h.writeCollectionError(w, id, err)
		return
	}
	writeJSON(w, records)
}

// AddToCollection puts a record into a collection.
func (h *Handlers) AddToCollection(w http.ResponseWriter, r *http.Request) {
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
	if err := h.db.AddToCollection(id, req.MediaID); err != nil {
		h.writeCollectionError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSONStatus(w, "added")
}

// RemoveFromCollection takes a record out of a collection.
func (h *Handlers) RemoveFromCollection(w http.ResponseWriter, r *http.Request) {
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
	if err := h.db.RemoveFromCollection(id, mediaID); err != nil {
		h.writeCollectionError(w, id, err)
		return
	}
	writeJSONStatus(w, "removed")
}

func (h *Handlers) writeCollectionError(w http.ResponseWriter, id int64, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "collection not found", http.StatusNotFound)
		return
	}
	logging.Error("Collection %d operation failed: %v", id, err)
	writeJSONError(w, "collection operation failed", http.StatusInternalServerError)
}
