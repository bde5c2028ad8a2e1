package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
)

// Command factories for async operations

// LoadCatalogCmd lists installed programs for the picker
func LoadCatalogCmd(orch *discovery.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		entries, err := orch.Catalog(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "listing installed programs"}
		}
		return CatalogLoadedMsg{Entries: entries}
	}
}

// ScanCmd runs a discovery run with streaming progress updates.
// Uses a continuation pattern to pump every report to the UI.
func ScanCmd(
	ctx context.Context,
	orch *discovery.Orchestrator,
	keys []domain.ProgramKey,
	opts discovery.RunOptions,
) tea.Cmd {
	return func() tea.Msg {
		progressCh := make(chan domain.ScanProgress, 64)
		doneCh := make(chan discovery.Result, 1)

		go func() {
			doneCh <- orch.Run(ctx, keys, opts, NewChannelObserver(progressCh))
		}()

		return readScan(progressCh, doneCh)
	}
}

// readScan waits for the next report or the end of the run and embeds
// the continuation command in the message
func readScan(progressCh <-chan domain.ScanProgress, doneCh <-chan discovery.Result) tea.Msg {
	select {
	case p := <-progressCh:
		return ScanProgressMsg{
			Progress: p,
			NextCmd:  func() tea.Msg { return readScan(progressCh, doneCh) },
		}
	case res := <-doneCh:
		msg := ScanDoneMsg{Result: res}
		// Run returns only after its last report was sent
		for {
			select {
			case p := <-progressCh:
				msg.Final = &p
			default:
				return msg
			}
		}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
