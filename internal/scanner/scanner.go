package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-vault/internal/filesystem"
	"media-vault/internal/mediatypes"
)

// Sentinel errors for traversal failures. ReadError wraps the underlying
// cause and carries the offending path.
var (
	ErrPathNotFound  = errors.New("path not found")
	ErrNotADirectory = errors.New("not a directory")
)

// ReadError reports a failure reading a directory entry during traversal.
// The scan of the affected subtree is aborted and the error propagates to
// the caller; a partial directory is never silently reported as complete.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error at %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ScannedFile is one discovered media file candidate.
type ScannedFile struct {
	Path     string
	FileName string
	Type     mediatypes.FileType
	Size     int64
	ModTime  time.Time
}

// Scanner walks directory trees looking for media files.
type Scanner struct {
	retry filesystem.RetryConfig
}

// New returns a Scanner using the default extension tables and retry
// settings.
func New() *Scanner {
	return &Scanner{retry: filesystem.DefaultRetryConfig()}
}

// Scan walks root depth-first and returns every video, audio, and subtitle
// file found. Entries whose name starts with a dot are skipped entirely.
// Traversal uses an explicit work stack rather than call-stack recursion so
// pathological tree depths cannot overflow.
//
// A single unreadable entry fails the whole call with a *ReadError; callers
// that want partial results must not treat the returned slice as complete.
func (s *Scanner) Scan(root string) ([]ScannedFile, error) {
	info, err := filesystem.Stat(root, s.retry)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, &ReadError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	var files []ScannedFile
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := filesystem.ReadDir(dir, s.retry)
		if err != nil {
			return nil, &ReadError{Path: dir, Err: err}
		}

		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, path)
				continue
			}

			fileType := mediatypes.GetFileType(entry.Name())
			if fileType == mediatypes.FileTypeOther {
				continue
			}

			fi, err := entry.Info()
			if err != nil {
				return nil, &ReadError{Path: path, Err: err}
			}

			files = append(files, ScannedFile{
				Path:     path,
				FileName: entry.Name(),
				Type:     fileType,
				Size:     fi.Size(),
				ModTime:  fi.ModTime(),
			})
		}
	}

	return files, nil
}
