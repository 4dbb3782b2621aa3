package tui

import "github.com/mmcdole/vizinho/internal/domain"

// ChannelObserver adapts domain.Observer to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.Event
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.Event) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Notify sends the event to the channel (non-blocking if full).
func (o *ChannelObserver) Notify(e domain.Event) {
	select {
	case o.ch <- e:
	default: // The model re-reads state on the next event anyway
	}
}
