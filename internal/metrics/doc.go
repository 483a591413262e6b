// Package metrics declares the Prometheus instrumentation for the media
// vault. All metrics share the media_vault_ prefix and are registered via
// promauto at import time.
package metrics
