package streaming

import (
	"errors"
	"net/http"
	"time"

	"media-vault/internal/filesystem"
	"media-vault/internal/logging"
)

// ErrClientGone indicates the client disconnected before the stream
// completed.
var ErrClientGone = errors.New("client disconnected")

// Config controls streaming behavior.
type Config struct {
	// WriteTimeout is the maximum time allowed for a single write to the
	// client. A client stuck longer than this has its stream aborted.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default streaming configuration.
func DefaultConfig() Config {
	return Config{WriteTimeout: 30 * time.Second}
}

// timeoutWriter pushes the connection's write deadline forward before every
// write, so a stalled client aborts the copy instead of pinning a goroutine.
type timeoutWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	timeout time.Duration
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	if tw.timeout > 0 {
		tw.rc.SetWriteDeadline(time.Now().Add(tw.timeout))
	}
	return tw.w.Write(b)
}

// ServeFile streams the file at path with HTTP range support. The request
// context and the per-write deadline bound how long a slow client can hold
// the handler.
func ServeFile(w http.ResponseWriter, r *http.Request, path string, config Config) error {
	f, err := filesystem.Open(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	tw := &timeoutWriter{
		w:       w,
		rc:      http.NewResponseController(w),
		timeout: config.WriteTimeout,
	}
	http.ServeContent(tw, r, info.Name(), info.ModTime(), f)

	if err := r.Context().Err(); err != nil {
		logging.Debug("Stream of %s ended early: %v", path, err)
		return ErrClientGone
	}
	return nil
}
