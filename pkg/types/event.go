package types

// EventType identifies a notification pushed to connected UI clients.
type EventType string

const (
	EventTypeRecentFilesChanged EventType = "recent_files_changed" // EventTypeRecentFilesChanged carries the current recent-file list after the store changed on disk.
)

// Event is an unsolicited message pushed to UI clients.
type Event struct {
	Type    EventType `json:"event"`
	Payload any       `json:"payload,omitempty"`
}

// NewRecentFilesChangedEvent wraps the current list in an event.
func NewRecentFilesChangedEvent(files []RecentFile) *Event {
	if files == nil {
		files = []RecentFile{}
	}
	return &Event{
		Type:    EventTypeRecentFilesChanged,
		Payload: files,
	}
}
