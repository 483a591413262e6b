package memory

import (
	"os"
	"runtime/debug"
	"strconv"

	"media-vault/internal/logging"
)

// DefaultMemoryRatio is the share of container memory given to the Go heap.
// The remainder is headroom for probe and thumbnail child processes.
const DefaultMemoryRatio = 0.85

// ConfigResult reports what ConfigureFromEnv decided.
type ConfigResult struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT", or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets GOMEMLIMIT from the container memory limit. Call it
// early in main, before significant allocations.
//
// GOMEMLIMIT takes precedence when set. Otherwise MEMORY_LIMIT (bytes, as
// injected by the container runtime) is scaled by MEMORY_RATIO.
func ConfigureFromEnv() ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return ConfigResult{
			Configured: true,
			Source:     "GOMEMLIMIT",
			GoMemLimit: debug.SetMemoryLimit(-1),
		}
	}

	limitStr := os.Getenv("MEMORY_LIMIT")
	if limitStr == "" {
		return ConfigResult{Source: "none"}
	}

	containerLimit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || containerLimit <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", limitStr)
		return ConfigResult{Source: "none"}
	}

	ratio := DefaultMemoryRatio
	if ratioStr := os.Getenv("MEMORY_RATIO"); ratioStr != "" {
		if r, err := strconv.ParseFloat(ratioStr, 64); err == nil && r > 0 && r <= 1 {
			ratio = r
		} else {
			logging.Warn("Ignoring invalid MEMORY_RATIO %q", ratioStr)
		}
	}

	goLimit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(goLimit)
	logging.Info("GOMEMLIMIT set to %d bytes (%.0f%% of container limit %d)",
		goLimit, ratio*100, containerLimit)

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}
