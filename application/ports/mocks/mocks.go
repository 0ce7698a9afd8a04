// Package mocks holds testify mocks for the application ports.
package mocks

import (
	"context"

	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
	"string-analyzer/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockStringRepository mocks ports.StringRepository
type MockStringRepository struct {
	mock.Mock
}

func (m *MockStringRepository) Create(ctx context.Context, s *entities.AnalyzedString) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStringRepository) GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*entities.AnalyzedString); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStringRepository) List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error) {
	args := m.Called(ctx, filter)
	if items, ok := args.Get(0).([]*entities.AnalyzedString); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStringRepository) Delete(ctx context.Context, id valueobjects.StringID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStringRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockCache mocks ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (interface{}, bool) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Bool(1)
}

func (m *MockCache) Version(ctx context.Context, key string) uint64 {
	args := m.Called(ctx, key)
	return args.Get(0).(uint64)
}

func (m *MockCache) SetIfUnchanged(ctx context.Context, key string, value interface{}, ttl int, version uint64) (bool, error) {
	args := m.Called(ctx, key, value, ttl, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

