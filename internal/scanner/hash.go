package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"media-vault/internal/filesystem"
)

const (
	// fastHashLimit is the number of leading bytes covered by a fast
	// fingerprint.
	fastHashLimit = 64 * 1024

	// hashChunkSize is the read buffer size for both hash modes.
	hashChunkSize = 8 * 1024
)

// FastHash returns the hex SHA-256 digest of at most the first 64 KiB of the
// file. Two files that agree in their first 64 KiB produce the same fast
// hash even if they differ later; callers must not treat fast-hash equality
// as full-content equality.
func FastHash(path string) (string, error) {
	return fileHash(path, fastHashLimit)
}

// FullHash returns the hex SHA-256 digest of the entire file.
func FullHash(path string) (string, error) {
	return fileHash(path, -1)
}

// fileHash hashes up to limit bytes of the file, or the whole file when
// limit is negative.
func fileHash(path string, limit int64) (string, error) {
	f, err := filesystem.Open(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit >= 0 {
		r = io.LimitReader(f, limit)
	}

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
