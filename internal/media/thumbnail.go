package media

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/dhowden/tag"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"media-vault/internal/logging"
	"media-vault/internal/mediatypes"
	"media-vault/internal/metrics"
)

const (
	thumbWidth  = 320
	thumbHeight = 180
	jpegQuality = 80
)

// ThumbnailGenerator renders and caches JPEG thumbnails for cataloged
// files. Video thumbnails are a frame extracted with ffmpeg; audio
// thumbnails come from embedded cover art.
type ThumbnailGenerator struct {
	cacheDir   string
	ffmpegPath string
	enabled    bool
	mu         sync.Mutex
}

// NewThumbnailGenerator prepares the cache directory. ffmpegPath may be
// empty to search PATH when a frame is first needed.
func NewThumbnailGenerator(cacheDir, ffmpegPath string, enabled bool) *ThumbnailGenerator {
	if enabled {
		logging.Debug("ThumbnailGenerator: enabled, cache dir: %s", cacheDir)
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			logging.Warn("ThumbnailGenerator: failed to create cache dir: %v", err)
		}
	} else {
		logging.Debug("ThumbnailGenerator: disabled")
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &ThumbnailGenerator{
		cacheDir:   cacheDir,
		ffmpegPath: ffmpegPath,
		enabled:    enabled,
	}
}

// IsEnabled reports whether the cache directory was usable at startup.
func (t *ThumbnailGenerator) IsEnabled() bool {
	return t.enabled
}

// GetThumbnail returns the JPEG thumbnail for a file, generating and
// caching it on first request.
func (t *ThumbnailGenerator) GetThumbnail(filePath string, fileType mediatypes.FileType) ([]byte, error) {
	if !t.enabled {
		return nil, fmt.Errorf("thumbnails disabled")
	}

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	cachePath := filepath.Join(t.cacheDir, cacheKeyFor(filePath))

	if data, err := os.ReadFile(cachePath); err == nil {
		logging.Debug("Thumbnail cache hit: %s", filePath)
		metrics.ThumbnailGenerationsTotal.WithLabelValues("cached").Inc()
		return data, nil
	}

	// Generation is serialized; concurrent requests for the same file
	// would otherwise race on ffmpeg and the cache write.
	t.mu.Lock()
	defer t.mu.Unlock()

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("cached").Inc()
		return data, nil
	}

	start := time.Now()
	data, err := t.generate(filePath, fileType)
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()

	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		logging.Warn("Failed to cache thumbnail %s: %v", cachePath, err)
	}
	return data, nil
}

// cacheKeyFor names the cache entry by a digest of the source path.
func cacheKeyFor(filePath string) string {
	hash := md5.Sum([]byte(filePath))
	return fmt.Sprintf("%x.jpg", hash)
}

func (t *ThumbnailGenerator) generate(filePath string, fileType mediatypes.FileType) ([]byte, error) {
	logging.Debug("Thumbnail generating: %s (type: %s)", filePath, fileType)

	var img image.Image
	var err error

	switch fileType {
	case mediatypes.FileTypeVideo:
		img, err = t.extractVideoFrame(filePath)
	case mediatypes.FileTypeAudio:
		img, err = extractCoverArt(filePath)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
	if err != nil {
		return nil, fmt.Errorf("thumbnail generation failed: %w", err)
	}

	thumb := imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// extractVideoFrame grabs one frame a few seconds in. Very short clips
// fail the seek, so a second attempt reads from the start.
func (t *ThumbnailGenerator) extractVideoFrame(filePath string) (image.Image, error) {
	ffmpegPath, err := exec.LookPath(t.ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	frame, err := runFFmpeg(ffmpegPath, "-ss", "00:00:05", "-i", filePath,
		"-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")
	if err != nil {
		logging.Debug("Seeked frame extraction failed for %s: %v", filePath, err)
		frame, err = runFFmpeg(ffmpegPath, "-i", filePath,
			"-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")
		if err != nil {
			return nil, err
		}
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

func runFFmpeg(path string, args ...string) ([]byte, error) {
	cmd := exec.Command(path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output")
	}
	return stdout.Bytes(), nil
}

// extractCoverArt decodes the picture embedded in an audio file's tags.
func extractCoverArt(filePath string) (image.Image, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("no readable tags: %w", err)
	}
	pic := meta.Picture()
	if pic == nil {
		return nil, fmt.Errorf("no embedded cover art")
	}

	img, _, err := image.Decode(bytes.NewReader(pic.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover art: %w", err)
	}
	return img, nil
}
