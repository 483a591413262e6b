// Package handlers implements the HTTP API: library scans, media queries
// and streaming, playback state, playlists and collections, tracks,
// settings, stats, and catalog backup.
package handlers
