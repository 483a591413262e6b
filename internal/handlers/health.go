package handlers

import (
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"media-vault/internal/startup"
)

var startTime = time.Now()

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Scanning bool   `json:"scanning"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	// Stats summary
	TotalFiles   int64 `json:"totalFiles"`
	MissingFiles int64 `json:"missingFiles"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(startTime).Round(time.Second).String(),
		Scanning:     h.indexer.Running(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	stats, err := h.db.GetLibraryStats()
	if err != nil {
		response.Status = statusDegraded
	} else {
		response.TotalFiles = stats.TotalFiles
		response.MissingFiles = stats.MissingFiles
	}

	if response.Status != statusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, response)
}

// LivenessCheck is a minimal check for orchestrator probes
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "alive")
}

// ReadinessCheck verifies the catalog answers queries
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if _, err := h.db.GetLibraryStats(); err != nil {
		writeJSONError(w, "catalog unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSONStatus(w, "ready")
}

// GetVersion returns build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}

// DependencyInfo reports whether an external tool could be resolved.
type DependencyInfo struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
}

// GetDependencies reports the external tools the service relies on. A
// missing tool degrades thumbnails and metadata but never the catalog, so
// this always answers 200.
func (h *Handlers) GetDependencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]DependencyInfo{
		"ffmpeg":  lookupDependency(h.ffmpegPath, "ffmpeg"),
		"ffprobe": lookupDependency(h.ffprobePath, "ffprobe"),
	})
}

func lookupDependency(configured, fallback string) DependencyInfo {
	name := configured
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return DependencyInfo{}
	}
	return DependencyInfo{Available: true, Path: path}
}
