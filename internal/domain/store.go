package domain

// FilterStore persists the last-known filter blob between sessions.
// Reads return (nil, false) when nothing is stored.
type FilterStore interface {
	Load() ([]byte, bool)
	Save(blob []byte) error
	Close() error
}
