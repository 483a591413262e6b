// Package scanner discovers media files on disk and turns them into
// normalized candidates for the catalog.
//
// It provides four pieces:
//
//   - Scanner walks a directory tree with an explicit work stack, skips
//     hidden entries, and classifies files by extension into video, audio,
//     and subtitle candidates.
//   - Content fingerprinting via SHA-256, in a fast mode (first 64 KiB
//     only, a cheap duplicate-candidate signal) and a full mode (entire
//     file).
//   - Filename heuristics extracting a display title, release year, and
//     season/episode numbers from release-style names.
//   - Probe, a best-effort technical metadata reader backed by ffprobe for
//     video and tag headers for audio. Probe failures degrade to empty
//     metadata and never abort a scan.
package scanner
