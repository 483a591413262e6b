package metrics

import (
	"os"
	"time"

	"media-vault/internal/logging"
)

// StatsProvider supplies catalog counts for the collector.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the catalog counts exported as gauges.
type Stats struct {
	FilesByKind map[string]int64
	Missing     int64
	Playlists   int64
	Collections int64
}

// Collector periodically refreshes the catalog gauges and the database file
// size metrics.
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a collector that polls provider every interval and
// measures the SQLite files rooted at dbPath.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider != nil {
		stats := c.statsProvider.GetStats()
		for kind, count := range stats.FilesByKind {
			MediaFilesTotal.WithLabelValues(kind).Set(float64(count))
		}
		MediaFilesMissing.Set(float64(stats.Missing))
		PlaylistsTotal.Set(float64(stats.Playlists))
		CollectionsTotal.Set(float64(stats.Collections))

		logging.Debug("Metrics collected: kinds=%d, missing=%d, playlists=%d",
			len(stats.FilesByKind), stats.Missing, stats.Playlists)
	}

	c.collectDBSizes()
}

func (c *Collector) collectDBSizes() {
	if c.dbPath == "" {
		return
	}
	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}
	for label, path := range files {
		if info, err := os.Stat(path); err == nil {
			DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
		} else {
			DBSizeBytes.WithLabelValues(label).Set(0)
		}
	}
}
