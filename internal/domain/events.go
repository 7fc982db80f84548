package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventError         EventType = "Error"
	EventSearchFailed  EventType = "SearchFailed"
	EventConfigLoaded  EventType = "ConfigLoaded"
	EventConfigSaved   EventType = "ConfigSaved"
	EventFilterChanged EventType = "FilterChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ErrorEvent is emitted when a non-search error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// SearchFailedEvent is emitted when the list reports a failed fetch
type SearchFailedEvent struct {
	Category string
	Query    string
	Err      error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// FilterChangedEvent is emitted when the user edits the query or category
type FilterChangedEvent struct {
	Category string
	Query    string
}

func (e FilterChangedEvent) Type() EventType { return EventFilterChanged }
