package indexer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"media-vault/internal/database"
	"media-vault/internal/events"
	"media-vault/internal/logging"
	"media-vault/internal/mediatypes"
	"media-vault/internal/metrics"
	"media-vault/internal/scanner"
)

// ErrScanInProgress is returned when a scan is requested while another is
// still running. The catalog has a single writer; scans never overlap.
var ErrScanInProgress = errors.New("a scan is already in progress")

// placeholderHash marks records whose content could not be read at index
// time. The file is still cataloged; a later rescan replaces the marker.
const placeholderHash = "unknown"

// HashMode selects how much of each file the fingerprint covers.
type HashMode int

const (
	// HashFast fingerprints the first 64 KiB. Scans stay cheap on large
	// libraries at the cost of missing tail-only edits.
	HashFast HashMode = iota
	// HashFull fingerprints entire files.
	HashFull
)

// Config wires the indexer's collaborators.
type Config struct {
	Prober   *scanner.Prober
	Hub      *events.Hub
	HashMode HashMode
}

// Indexer drives library scans against the catalog.
type Indexer struct {
	db      *database.Database
	scanner *scanner.Scanner
	prober  *scanner.Prober
	hub     *events.Hub
	mode    HashMode
	running atomic.Bool
}

// New creates an Indexer. Prober and Hub may be nil; probing and progress
// events are then skipped.
func New(db *database.Database, cfg Config) *Indexer {
	return &Indexer{
		db:      db,
		scanner: scanner.New(),
		prober:  cfg.Prober,
		hub:     cfg.Hub,
		mode:    cfg.HashMode,
	}
}

// ScanProgress is the per-file progress event payload.
type ScanProgress struct {
	CurrentFile  string `json:"current_file"`
	CurrentDir   string `json:"current_directory"`
	FilesScanned int    `json:"files_scanned"`
	FilesFound   int    `json:"files_found"`
}

// ScanFailure records one file the scan could not fully process.
type ScanFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ScanResult summarizes a completed scan.
type ScanResult struct {
	TotalFound      int           `json:"total_found"`
	Added           int           `json:"added"`
	Updated         int           `json:"updated"`
	Errors          int           `json:"errors"`
	Missing         int64         `json:"missing"`
	Failures        []ScanFailure `json:"failures,omitempty"`
	DurationSeconds float64       `json:"duration_seconds"`
}

// Running reports whether a scan is currently active.
func (ix *Indexer) Running() bool {
	return ix.running.Load()
}

// ScanLibrary scans every root and sweeps the whole catalog: records whose
// file was not observed under any root are flagged missing.
func (ix *Indexer) ScanLibrary(roots []string) (*ScanResult, error) {
	if !ix.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer ix.running.Store(false)

	return ix.scan(roots, func(observed []string) (int64, error) {
		return ix.db.MarkMissing(observed)
	})
}

// ScanDirectory scans a single root. The sweep is scoped to that root so a
// partial rescan cannot flag the rest of the library.
func (ix *Indexer) ScanDirectory(root string) (*ScanResult, error) {
	if !ix.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer ix.running.Store(false)

	return ix.scan([]string{root}, func(observed []string) (int64, error) {
		return ix.db.MarkMissingUnder(root, observed)
	})
}

func (ix *Indexer) scan(roots []string, sweep func([]string) (int64, error)) (*ScanResult, error) {
	start := time.Now()
	metrics.ScansTotal.Inc()
	metrics.ScanRunning.Set(1)
	defer metrics.ScanRunning.Set(0)

	ix.publish(events.TypeScanStarted, map[string]interface{}{"roots": roots})
	logging.Info("Scan started for %d root(s)", len(roots))

	result := &ScanResult{}
	var observed []string

	discoverSubs := true
	if v, err := ix.db.GetSetting("subtitle_auto_discover"); err == nil && v == "false" {
		discoverSubs = false
	}

	for _, root := range roots {
		files, err := ix.scanner.Scan(root)
		if err != nil {
			// A traversal failure aborts the whole scan; a partial listing
			// must never feed the sweep.
			return nil, fmt.Errorf("scan of %s failed: %w", root, err)
		}
		result.TotalFound += len(files)

		for i, f := range files {
			ix.publish(events.TypeScanProgress, ScanProgress{
				CurrentFile:  f.FileName,
				CurrentDir:   filepath.Dir(f.Path),
				FilesScanned: i + 1,
				FilesFound:   len(files),
			})

			if f.Type == mediatypes.FileTypeSubtitle {
				// Sidecars are attached to their media record, not
				// cataloged on their own.
				continue
			}

			created, err := ix.indexFile(f, result, discoverSubs)
			if err != nil {
				result.Errors++
				result.Failures = append(result.Failures, ScanFailure{
					Path:  f.Path,
					Error: err.Error(),
				})
				metrics.ScanFilesProcessed.WithLabelValues("error").Inc()
				logging.Warn("Failed to index %s: %v", f.Path, err)
				continue
			}
			observed = append(observed, f.Path)
			if created {
				result.Added++
				metrics.ScanFilesProcessed.WithLabelValues("added").Inc()
			} else {
				result.Updated++
				metrics.ScanFilesProcessed.WithLabelValues("updated").Inc()
			}
		}
	}

	missing, err := sweep(observed)
	if err != nil {
		return nil, fmt.Errorf("sweep failed: %w", err)
	}
	result.Missing = missing

	result.DurationSeconds = time.Since(start).Seconds()
	metrics.ScanLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScanLastRunDuration.Set(result.DurationSeconds)

	ix.publish(events.TypeScanComplete, result)
	ix.publish(events.TypeLibraryChanged, nil)
	logging.Info("Scan complete: %d found, %d added, %d updated, %d errors, %d missing (%.1fs)",
		result.TotalFound, result.Added, result.Updated, result.Errors,
		result.Missing, result.DurationSeconds)
	return result, nil
}

// indexFile turns one scanned file into a catalog upsert. Hash failures
// degrade to a placeholder fingerprint and are reported as an error while
// the record itself is still persisted.
func (ix *Indexer) indexFile(f scanner.ScannedFile, result *ScanResult, discoverSubs bool) (bool, error) {
	hash, hashErr := ix.fingerprint(f.Path)
	if hashErr != nil {
		hash = placeholderHash
	}

	rec := ix.buildRecord(f, hash)

	created, err := ix.db.UpsertMedia(rec)
	if err != nil {
		return false, err
	}

	if discoverSubs && f.Type == mediatypes.FileTypeVideo {
		if _, err := ix.db.DiscoverSubtitles(rec.ID, f.Path); err != nil {
			logging.Warn("Subtitle discovery failed for %s: %v", f.Path, err)
		}
	}

	if hashErr != nil {
		// Persisted, but the scan still reports the unreadable content.
		result.Errors++
		result.Failures = append(result.Failures, ScanFailure{
			Path:  f.Path,
			Error: hashErr.Error(),
		})
		metrics.ScanFilesProcessed.WithLabelValues("error").Inc()
	}
	return created, nil
}

func (ix *Indexer) fingerprint(path string) (string, error) {
	if ix.mode == HashFull {
		return scanner.FullHash(path)
	}
	return scanner.FastHash(path)
}

// buildRecord assembles the catalog record: parsed filename fields,
// classification, and probed technical metadata.
func (ix *Indexer) buildRecord(f scanner.ScannedFile, hash string) *database.MediaRecord {
	title, year := scanner.ParseTitleYear(f.FileName)
	season, episode, isEpisode := scanner.ParseEpisode(f.FileName)

	var meta scanner.TechnicalMetadata
	if ix.prober != nil {
		probeStart := time.Now()
		meta = ix.prober.Probe(f.Path, f.Type)
		metrics.MetadataExtractionDuration.Observe(time.Since(probeStart).Seconds())
		if meta.IsComplete() {
			metrics.MetadataExtractionsTotal.WithLabelValues("success").Inc()
		} else {
			metrics.MetadataExtractionsTotal.WithLabelValues("error").Inc()
		}
	}

	rec := &database.MediaRecord{
		FilePath:      f.Path,
		FileHash:      hash,
		FileName:      f.FileName,
		FileSize:      f.Size,
		Kind:          classify(f.Type, isEpisode),
		Duration:      meta.Duration,
		Codec:         meta.Codec,
		Resolution:    meta.ResolutionString(),
		Bitrate:       meta.Bitrate,
		Framerate:     meta.Framerate,
		AudioCodec:    meta.AudioCodec,
		AudioChannels: meta.AudioChannels,
		Title:         title,
		Year:          year,
		LastModified:  f.ModTime,
	}
	if isEpisode {
		rec.SeasonNumber = &season
		rec.EpisodeNumber = &episode
	}
	if meta.Artist != "" || meta.Album != "" {
		rec.ExtraMetadata = map[string]string{}
		if meta.Artist != "" {
			rec.ExtraMetadata["artist"] = meta.Artist
		}
		if meta.Album != "" {
			rec.ExtraMetadata["album"] = meta.Album
		}
	}
	if meta.SampleRate > 0 {
		if rec.ExtraMetadata == nil {
			rec.ExtraMetadata = map[string]string{}
		}
		rec.ExtraMetadata["sample_rate"] = strconv.Itoa(meta.SampleRate)
	}
	return rec
}

// classify maps a scanned file to its catalog kind. An episode marker in
// the filename wins over everything else, audio files are music, and the
// rest are movies.
func classify(t mediatypes.FileType, isEpisode bool) mediatypes.MediaKind {
	if isEpisode {
		return mediatypes.KindTVEpisode
	}
	if t == mediatypes.FileTypeAudio {
		return mediatypes.KindMusic
	}
	return mediatypes.KindMovie
}

func (ix *Indexer) publish(eventType string, payload interface{}) {
	if ix.hub != nil {
		ix.hub.Publish(eventType, payload)
	}
}
