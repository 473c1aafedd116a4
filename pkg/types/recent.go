package types

// RecentFile is one entry of the recently opened notebooks list.
// Entries are identified by Path only; Name and Timestamp are caller supplied
// and never validated.
type RecentFile struct {
	// Path is the filesystem path of the notebook, treated as opaque.
	Path string `json:"path"`

	// Name is the display label shown by the UI.
	Name string `json:"name"`

	// Timestamp is the last access time, by convention epoch milliseconds.
	Timestamp uint64 `json:"timestamp"`
}
