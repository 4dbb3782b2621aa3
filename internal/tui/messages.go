package tui

import "github.com/mmcdole/vizinho/internal/domain"

// EventMsg carries a change notification from the filter store
type EventMsg struct {
	Event domain.Event
}

// opDoneMsg reports the outcome of a background operation
type opDoneMsg struct {
	Op  string
	Err error
}

// suggestDoneMsg reports the outcome of a condominium suggestion
type suggestDoneMsg struct {
	Name string
	ID   string
	Err  error
}
