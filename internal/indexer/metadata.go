package indexer

import (
	"sync"
	"sync/atomic"

	"media-vault/internal/database"
	"media-vault/internal/events"
	"media-vault/internal/logging"
	"media-vault/internal/workers"
)

const maxMetadataWorkers = 8

// MetadataProgress is the per-file batch extraction event payload.
type MetadataProgress struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CurrentFile string `json:"current_file"`
}

// MetadataResult summarizes a batch extraction run.
type MetadataResult struct {
	Total     int `json:"total"`
	Extracted int `json:"extracted"`
	Failed    int `json:"failed"`
}

// ExtractMissingMetadata probes every live record that still lacks
// technical metadata and writes the results back. Files are probed by a
// small worker pool; catalog writes stay on the single writer.
func (ix *Indexer) ExtractMissingMetadata() (*MetadataResult, error) {
	result := &MetadataResult{}

	if ix.prober == nil || !ix.prober.Available() {
		logging.Warn("Metadata extraction skipped; ffprobe is not available")
		return result, nil
	}

	pending, err := ix.db.GetMediaNeedingMetadata()
	if err != nil {
		return nil, err
	}
	result.Total = len(pending)
	if len(pending) == 0 {
		return result, nil
	}

	logging.Info("Extracting metadata for %d file(s)", len(pending))

	jobs := make(chan database.MediaRecord)
	results := make(chan *database.MediaRecord)
	var done atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < workers.ForIO(maxMetadataWorkers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				kind := rec.Kind.FileType()
				meta := ix.prober.Probe(rec.FilePath, kind)

				ix.publish(events.TypeMetadataProgress, MetadataProgress{
					Current:     int(done.Add(1)),
					Total:       len(pending),
					CurrentFile: rec.FileName,
				})

				if !meta.IsComplete() {
					results <- nil
					continue
				}
				rec.Duration = meta.Duration
				rec.Codec = meta.Codec
				rec.Resolution = meta.ResolutionString()
				rec.Bitrate = meta.Bitrate
				rec.Framerate = meta.Framerate
				rec.AudioCodec = meta.AudioCodec
				rec.AudioChannels = meta.AudioChannels
				r := rec
				results <- &r
			}
		}()
	}

	go func() {
		for _, rec := range pending {
			jobs <- rec
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for rec := range results {
		if rec == nil {
			result.Failed++
			continue
		}
		if _, err := ix.db.UpsertMedia(rec); err != nil {
			logging.Warn("Failed to store metadata for %s: %v", rec.FilePath, err)
			result.Failed++
			continue
		}
		result.Extracted++
	}

	ix.publish(events.TypeMetadataComplete, result)
	logging.Info("Metadata extraction complete: %d extracted, %d failed of %d",
		result.Extracted, result.Failed, result.Total)
	return result, nil
}
