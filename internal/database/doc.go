// Package database owns the SQLite catalog backing the media vault.
//
// All access goes through the Database type, which serializes writes with a
// mutex so the catalog has a single writer at any moment. Reads take a shared
// lock. Every query uses bound parameters; no user-supplied text is ever
// concatenated into SQL.
//
// The catalog stores media records, playback state and history, playlists
// (manual and rule-based), collections, subtitle and audio tracks, and a
// small settings table. Schema changes are applied through numbered
// migrations tracked in schema_version.
package database
