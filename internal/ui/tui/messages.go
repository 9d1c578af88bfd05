// Package tui provides a Bubble Tea-based terminal UI for watching a MySQL
// StatefulSet deployment.
package tui

import "github.com/imamik/mysqlset/internal/inventory"

// StatusMsg carries the latest snapshot of the deployment.
type StatusMsg struct {
	Status *inventory.Status
	Err    error
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that watching is over.
type DoneMsg struct{}
