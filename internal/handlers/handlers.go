package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"media-vault/internal/database"
	"media-vault/internal/events"
	"media-vault/internal/indexer"
	"media-vault/internal/media"
	"media-vault/internal/startup"
)

// Handlers carries the shared state every HTTP handler needs.
type Handlers struct {
	db          *database.Database
	indexer     *indexer.Indexer
	hub         *events.Hub
	thumbGen    *media.ThumbnailGenerator
	mediaDirs   []string
	backupDir   string
	ffmpegPath  string
	ffprobePath string
}

// New wires the handler set.
func New(db *database.Database, idx *indexer.Indexer, hub *events.Hub, config *startup.Config) *Handlers {
	return &Handlers{
		db:          db,
		indexer:     idx,
		hub:         hub,
		thumbGen:    media.NewThumbnailGenerator(config.ThumbnailDir, config.FFmpegPath, config.ThumbnailsEnabled),
		mediaDirs:   config.MediaDirs,
		backupDir:   config.DatabaseDir,
		ffmpegPath:  config.FFmpegPath,
		ffprobePath: config.FFprobePath,
	}
}

// RegisterRoutes attaches every API route to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	// Library
	api.HandleFunc("/scan", h.TriggerScan).Methods(http.MethodPost)
	api.HandleFunc("/scan/status", h.ScanStatus).Methods(http.MethodGet)
	api.HandleFunc("/scan/metadata", h.ExtractMetadata).Methods(http.MethodPost)

	// Media
	api.HandleFunc("/media", h.ListMedia).Methods(http.MethodGet)
	api.HandleFunc("/media/filter", h.FilterMedia).Methods(http.MethodPost)
	api.HandleFunc("/media/missing", h.GetMissing).Methods(http.MethodGet)
	api.HandleFunc("/media/missing", h.PurgeMissing).Methods(http.MethodDelete)
	api.HandleFunc("/media/in-progress", h.GetInProgress).Methods(http.MethodGet)
	api.HandleFunc("/media/recent", h.GetRecentlyPlayed).Methods(http.MethodGet)
	api.HandleFunc("/media/{id:[0-9]+}", h.GetMedia).Methods(http.MethodGet)
	api.HandleFunc("/media/{id:[0-9]+}/stream", h.StreamMedia).Methods(http.MethodGet)
	api.HandleFunc("/media/{id:[0-9]+}/thumbnail", h.GetThumbnail).Methods(http.MethodGet)

	// Playback
	api.HandleFunc("/media/{id:[0-9]+}/playback", h.GetPlaybackState).Methods(http.MethodGet)
	api.HandleFunc("/media/{id:[0-9]+}/playback", h.UpdatePosition).Methods(http.MethodPut)
	api.HandleFunc("/media/{id:[0-9]+}/watched", h.MarkWatched).Methods(http.MethodPost)
	api.HandleFunc("/media/{id:[0-9]+}/watched", h.MarkUnwatched).Methods(http.MethodDelete)

	// Tracks
	api.HandleFunc("/media/{id:[0-9]+}/subtitles", h.GetSubtitles).Methods(http.MethodGet)
	api.HandleFunc("/media/{id:[0-9]+}/subtitles/discover", h.DiscoverSubtitles).Methods(http.MethodPost)
	api.HandleFunc("/subtitles/{id:[0-9]+}", h.DeleteSubtitle).Methods(http.MethodDelete)
	api.HandleFunc("/media/{id:[0-9]+}/audio-tracks", h.GetAudioTracks).Methods(http.MethodGet)

	// Playlists
	api.HandleFunc("/playlists", h.ListPlaylists).Methods(http.MethodGet)
	api.HandleFunc("/playlists", h.CreatePlaylist).Methods(http.MethodPost)
	api.HandleFunc("/playlists/import", h.ImportPlaylist).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.GetPlaylist).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.UpdatePlaylist).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.DeletePlaylist).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id:[0-9]+}/media", h.GetPlaylistMedia).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}/items", h.AddPlaylistItem).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}/items/{mediaId:[0-9]+}", h.RemovePlaylistItem).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id:[0-9]+}/reorder", h.ReorderPlaylist).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}/rules", h.GetPlaylistRules).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}/rules", h.AddPlaylistRule).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}/export", h.ExportPlaylist).Methods(http.MethodGet)
	api.HandleFunc("/playlist-rules/{id:[0-9]+}", h.DeletePlaylistRule).Methods(http.MethodDelete)

	// Collections
	api.HandleFunc("/collections", h.ListCollections).Methods(http.MethodGet)
	api.HandleFunc("/collections", h.CreateCollection).Methods(http.MethodPost)
	api.HandleFunc("/collections/{id:[0-9]+}", h.GetCollection).Methods(http.MethodGet)
	api.HandleFunc("/collections/{id:[0-9]+}", h.DeleteCollection).Methods(http.MethodDelete)
	api.HandleFunc("/collections/{id:[0-9]+}/media", h.GetCollectionMedia).Methods(http.MethodGet)
	api.HandleFunc("/collections/{id:[0-9]+}/items", h.AddToCollection).Methods(http.MethodPost)
	api.HandleFunc("/collections/{id:[0-9]+}/items/{mediaId:[0-9]+}", h.RemoveFromCollection).Methods(http.MethodDelete)

	// Settings
	api.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", h.GetSetting).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", h.SetSetting).Methods(http.MethodPut)

	// Stats and maintenance
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/backup", h.CreateBackup).Methods(http.MethodPost)
	api.HandleFunc("/restore", h.RestoreBackup).Methods(http.MethodPost)
	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	api.HandleFunc("/dependencies", h.GetDependencies).Methods(http.MethodGet)

	// Event stream
	api.HandleFunc("/events", h.hub.ServeWS)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.LivenessCheck).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
}
