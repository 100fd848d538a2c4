package domain

// HistoryRepository defines the interface for download history persistence
type HistoryRepository interface {
	// Create stores a new entry
	Create(entry *HistoryEntry) error

	// Delete removes an entry by ID
	Delete(id string) error

	// FindByID finds an entry by ID
	FindByID(id string) (*HistoryEntry, error)

	// FindAll lists entries newest first
	FindAll(filter HistoryFilter) ([]*HistoryEntry, error)

	// GetStats counts entries by outcome
	GetStats() (*HistoryStats, error)
}

// PreferenceStore is durable client-side key/value storage
type PreferenceStore interface {
	// Get returns the stored value and whether the key exists
	Get(key string) (string, bool, error)

	// Set stores a value
	Set(key, value string) error
}
