// Package playlist reads and writes playlist interchange formats: extended
// M3U export and M3U/WPL import. Imported entries are plain file paths; the
// caller resolves them against the catalog.
package playlist
