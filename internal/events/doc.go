// Package events broadcasts library activity to connected clients over
// WebSocket. Publishing never blocks: slow or stalled clients have their
// buffers overrun and are disconnected rather than holding up a scan.
package events
