// Package indexer reconciles directory trees with the catalog. A scan
// walks the configured roots, fingerprints and classifies every media file,
// upserts the results, and sweeps records whose files have disappeared.
// Progress is published to the event hub as the scan moves.
package indexer
