package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CatalogLoadedMsg carries the installed, non-blocked programs for the picker
type CatalogLoadedMsg struct {
	Entries []discovery.CatalogEntry
}

// ScanProgressMsg is sent for each progress report of a running scan
type ScanProgressMsg struct {
	Progress domain.ScanProgress
	NextCmd  tea.Cmd // Continuation that reads the next report
}

// ScanDoneMsg signals that a discovery run returned
type ScanDoneMsg struct {
	Result discovery.Result
	Final  *domain.ScanProgress // Last report still buffered when the run returned
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
