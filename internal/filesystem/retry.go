package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"media-vault/internal/logging"
	"media-vault/internal/metrics"
)

// RetryConfig controls backoff for stale-handle retries.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the defaults tuned for NFS mounts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isStaleError reports whether err is an NFS stale file handle (ESTALE).
func isStaleError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// retry runs fn until it succeeds, fails with a non-stale error, or the
// retry budget is spent. Only ESTALE is retried; everything else surfaces
// immediately.
func retry(op, path string, config RetryConfig, fn func() error) error {
	backoff := config.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("%s succeeded on retry %d for %s", op, attempt, path)
			}
			return nil
		}
		lastErr = err

		if !isStaleError(err) {
			return err
		}
		metrics.FilesystemStaleErrors.WithLabelValues(op).Inc()

		if attempt < config.MaxRetries {
			metrics.FilesystemRetryAttempts.WithLabelValues(op).Inc()
			logging.Debug("%s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("%s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	return lastErr
}

// Stat performs os.Stat with stale-handle retries.
func Stat(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := retry("stat", path, config, func() (err error) {
		info, err = os.Stat(path)
		return err
	})
	return info, err
}

// Open performs os.Open with stale-handle retries.
func Open(path string, config RetryConfig) (*os.File, error) {
	var f *os.File
	err := retry("open", path, config, func() (err error) {
		f, err = os.Open(path)
		return err
	})
	return f, err
}

// ReadDir performs os.ReadDir with stale-handle retries.
func ReadDir(path string, config RetryConfig) ([]os.DirEntry, error) {
	var entries []os.DirEntry
	err := retry("readdir", path, config, func() (err error) {
		entries, err = os.ReadDir(path)
		return err
	})
	return entries, err
}
