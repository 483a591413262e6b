// Package middleware provides the HTTP middleware chain: request logging
// in W3C extended format and Prometheus instrumentation.
package middleware
