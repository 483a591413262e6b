// Package memory configures the Go soft memory limit from container
// environment variables so the runtime leaves headroom for ffmpeg and
// ffprobe child processes.
package memory
