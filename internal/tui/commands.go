package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/vizinho/internal/domain"
)

// listenCmd waits for the next store event. It returns nil once the
// channel is closed.
func listenCmd(events <-chan domain.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}

// retryCmd retries the failed listing load
func retryCmd(ctx context.Context, engine Engine) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{Op: "retry", Err: engine.RetryLoadListings(ctx)}
	}
}

// refreshPriceCmd asks the repository for the current price bound
func refreshPriceCmd(ctx context.Context, engine Engine) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{Op: "refresh price", Err: engine.RefreshMaxPrice(ctx)}
	}
}

// suggestCmd submits a condominium in the selected city
func suggestCmd(ctx context.Context, engine Engine, name, address string) tea.Cmd {
	return func() tea.Msg {
		id, err := engine.SuggestCondominium(ctx, name, address)
		return suggestDoneMsg{Name: name, ID: id, Err: err}
	}
}
