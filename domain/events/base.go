package events

import (
	"time"

	"string-analyzer/domain/core/valueobjects"

	"github.com/google/uuid"
)

// SourceService is the event source reported to subscribers
const SourceService = "string-analyzer.api"

// Event types
const (
	TypeStringAnalyzed = "string.analyzed"
	TypeStringDeleted  = "string.deleted"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBaseEvent(id valueobjects.StringID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: id.String(),
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// StringAnalyzed is raised when a new string has been analyzed and stored
type StringAnalyzed struct {
	BaseEvent
	StringID   valueobjects.StringID   `json:"string_id"`
	Properties valueobjects.Properties `json:"properties"`
}

// NewStringAnalyzed creates a StringAnalyzed event
func NewStringAnalyzed(id valueobjects.StringID, props valueobjects.Properties, timestamp time.Time) StringAnalyzed {
	return StringAnalyzed{
		BaseEvent:  newBaseEvent(id, TypeStringAnalyzed, timestamp),
		StringID:   id,
		Properties: props,
	}
}

// StringDeleted is raised when a stored string is removed
type StringDeleted struct {
	BaseEvent
	StringID valueobjects.StringID `json:"string_id"`
	Length   int                   `json:"length"`
}

// NewStringDeleted creates a StringDeleted event
func NewStringDeleted(id valueobjects.StringID, length int, timestamp time.Time) StringDeleted {
	return StringDeleted{
		BaseEvent: newBaseEvent(id, TypeStringDeleted, timestamp),
		StringID:  id,
		Length:    length,
	}
}
