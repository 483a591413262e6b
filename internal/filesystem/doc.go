// Package filesystem wraps basic file operations with retry logic for the
// stale-handle errors seen on NFS-mounted media libraries.
package filesystem
