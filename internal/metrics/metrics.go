package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_vault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_vault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_vault_db_size_bytes",
			Help: "Size of SQLite catalog files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)

	MediaFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_vault_media_files_total",
			Help: "Number of cataloged media files by kind",
		},
		[]string{"kind"},
	)

	MediaFilesMissing = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_media_files_missing",
			Help: "Number of cataloged files currently missing on disk",
		},
	)

	PlaylistsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_playlists_total",
			Help: "Number of playlists",
		},
	)

	CollectionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_collections_total",
			Help: "Number of collections",
		},
	)
)

// Scan metrics
var (
	ScansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_vault_scans_total",
			Help: "Total number of library scans",
		},
	)

	ScanRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_scan_running",
			Help: "Whether a scan is currently running (1 = running, 0 = idle)",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_scan_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_scan_last_run_duration_seconds",
			Help: "Duration of the last completed scan in seconds",
		},
	)

	ScanFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_vault_scan_files_processed_total",
			Help: "Total files handled by scans, by outcome",
		},
		[]string{"outcome"}, // "added", "updated", "error"
	)
)

// Metadata extraction metrics
var (
	MetadataExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_vault_metadata_extractions_total",
			Help: "Total number of metadata probe attempts",
		},
		[]string{"status"}, // "success", "error"
	)

	MetadataExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_vault_metadata_extraction_duration_seconds",
			Help:    "Metadata probe duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_vault_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"}, // "success", "error", "cached"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_vault_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Event hub metrics
var (
	EventClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_vault_event_clients_connected",
			Help: "Number of connected WebSocket event clients",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_vault_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_vault_filesystem_stale_errors_total",
			Help: "Total number of stale NFS file handle errors",
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_vault_app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// SetAppInfo sets the application info metric.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// InitializeMetrics pre-populates expected label combinations so every
// series is exported from the first scrape.
func InitializeMetrics() {
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}
	for _, outcome := range []string{"added", "updated", "error"} {
		ScanFilesProcessed.WithLabelValues(outcome)
	}
	for _, status := range []string{"success", "error"} {
		MetadataExtractionsTotal.WithLabelValues(status)
	}
	for _, status := range []string{"success", "error", "cached"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}
	for _, op := range []string{"stat", "open", "readdir"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}
