package entities

import (
	"maps"
	"strings"
	"time"

	"string-analyzer/domain/core/valueobjects"
	"string-analyzer/domain/events"
	pkgerrors "string-analyzer/pkg/errors"
)

// AnalyzedString is a stored value together with its computed properties.
// Its ID is always the SHA-256 digest of the value.
type AnalyzedString struct {
	id         valueobjects.StringID
	value      string
	properties valueobjects.Properties
	createdAt  time.Time

	events []events.DomainEvent
}

// NewAnalyzedString analyzes value and builds a new entity. Surrounding
// whitespace is dropped before analysis; a blank value is rejected.
func NewAnalyzedString(value string, now time.Time) (*AnalyzedString, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, pkgerrors.NewUnprocessableError("string value cannot be empty")
	}

	props := valueobjects.Analyze(value)
	id := valueobjects.NewStringID(value)

	s := &AnalyzedString{
		id:         id,
		value:      value,
		properties: props,
		createdAt:  now.UTC(),
	}
	s.addEvent(events.NewStringAnalyzed(id, props, s.createdAt))

	return s, nil
}

// ReconstructAnalyzedString rebuilds an entity from storage. Properties are
// taken as stored; the ID must still match the value.
func ReconstructAnalyzedString(
	id valueobjects.StringID,
	value string,
	props valueobjects.Properties,
	createdAt time.Time,
) (*AnalyzedString, error) {
	if !valueobjects.NewStringID(value).Equals(id) {
		return nil, pkgerrors.NewInternalError("stored string ID does not match its value")
	}
	if props.CharacterFrequencyMap == nil {
		props.CharacterFrequencyMap = map[string]int{}
	}

	return &AnalyzedString{
		id:         id,
		value:      value,
		properties: props,
		createdAt:  createdAt.UTC(),
	}, nil
}

// ID returns the content hash identifying this string
func (s *AnalyzedString) ID() valueobjects.StringID {
	return s.id
}

// Value returns the original (trimmed) text
func (s *AnalyzedString) Value() string {
	return s.value
}

// Properties returns the computed properties
func (s *AnalyzedString) Properties() valueobjects.Properties {
	return s.properties
}

// CreatedAt returns when the string was first stored
func (s *AnalyzedString) CreatedAt() time.Time {
	return s.createdAt
}

// Snapshot returns a copy that shares no mutable state with s and carries
// no pending events
func (s *AnalyzedString) Snapshot() *AnalyzedString {
	props := s.properties
	props.CharacterFrequencyMap = maps.Clone(s.properties.CharacterFrequencyMap)
	return &AnalyzedString{
		id:         s.id,
		value:      s.value,
		properties: props,
		createdAt:  s.createdAt,
	}
}

// MarkDeleted records a deletion event for this string
func (s *AnalyzedString) MarkDeleted(now time.Time) {
	s.addEvent(events.NewStringDeleted(s.id, s.properties.Length, now.UTC()))
}

// GetUncommittedEvents returns events raised since the last commit
func (s *AnalyzedString) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the pending events
func (s *AnalyzedString) MarkEventsAsCommitted() {
	s.events = nil
}

func (s *AnalyzedString) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}
