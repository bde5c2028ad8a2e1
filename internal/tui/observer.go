package tui

import "github.com/mmcdole/dlcscan/internal/domain"

// ChannelObserver adapts domain.ScanObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.ScanProgress
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.ScanProgress) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnProgress sends progress to the channel (non-blocking if full).
func (o *ChannelObserver) OnProgress(progress domain.ScanProgress) {
	select {
	case o.ch <- progress:
	default: // The UI catches up from the next report or ScanDoneMsg
	}
}
