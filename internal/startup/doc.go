// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - MEDIA_DIRS: Comma or colon separated library roots (default: /media)
//   - CACHE_DIR: Path to cache directory for thumbnails (default: /cache)
//   - DATABASE_DIR: Path to catalog directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - RESCAN_SCHEDULE: Cron spec for periodic library rescans (default: @every 30m)
//   - FFPROBE_PATH: Explicit ffprobe binary path (default: search PATH)
//   - FFMPEG_PATH: Explicit ffmpeg binary path (default: search PATH)
//   - HASH_FULL: Fingerprint whole files instead of the first 64 KiB (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT: Container memory limit for automatic GOMEMLIMIT configuration
//   - MEMORY_RATIO: Fraction of MEMORY_LIMIT for the Go heap (default: 0.85)
//   - GOMEMLIMIT: Direct override for Go's memory limit
//
// # Directory Setup
//
// The database directory is required and must be writable. The thumbnail
// cache is optional; when it cannot be created thumbnails are disabled and
// the rest of the application runs normally. Media directories are checked
// but never created, they are expected to be mounted.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
