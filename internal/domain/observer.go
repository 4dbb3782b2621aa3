package domain

// EventKind identifies what changed in the filter engine.
type EventKind int

const (
	// FiltersChanged fires after any filter mutation is applied.
	FiltersChanged EventKind = iota
	// ListingsChanged fires when the fetch view changes (loading, results, error, notice).
	ListingsChanged
	// LocationsChanged fires when a cascade level changes.
	LocationsChanged
)

func (k EventKind) String() string {
	switch k {
	case FiltersChanged:
		return "filters"
	case ListingsChanged:
		return "listings"
	case LocationsChanged:
		return "locations"
	default:
		return "unknown"
	}
}

// Event is a change notification. Observers re-read state through the
// store's getters; events carry no payload beyond an optional message.
type Event struct {
	Kind    EventKind
	Message string
}

// Observer receives change notifications. Implementations must not block.
type Observer interface {
	Notify(Event)
}

// NoOpObserver discards events.
type NoOpObserver struct{}

func (NoOpObserver) Notify(Event) {}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }
