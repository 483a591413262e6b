// Package workers sizes worker pools from the available CPU budget.
package workers
