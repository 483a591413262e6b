// Package streaming serves media file content over HTTP with range support
// and slow-client protection.
package streaming
