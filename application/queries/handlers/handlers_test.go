package handlers

import (
	"context"
	"testing"
	"time"

	"string-analyzer/application/ports"
	"string-analyzer/application/ports/mocks"
	"string-analyzer/application/queries"
	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
	pkgerrors "string-analyzer/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func analyzed(t *testing.T, value string) *entities.AnalyzedString {
	t.Helper()
	s, err := entities.NewAnalyzedString(value, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return s
}

func TestGetStringHandler_CachesResult(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStringRepository)
	cache := new(mocks.MockCache)
	id := valueobjects.NewStringID("noon")
	key := ports.StringCacheKey(id)

	repo.On("GetByID", ctx, id).Return(analyzed(t, "noon"), nil).Once()
	cache.On("Get", ctx, key).Return(nil, false).Once()
	cache.On("Version", ctx, key).Return(uint64(4)).Once()
	cache.On("SetIfUnchanged", ctx, key, mock.AnythingOfType("queries.StringResult"), 30, uint64(4)).Return(true, nil).Once()

	handler := NewGetStringHandler(repo, cache, func() int { return 30 }, zap.NewNop())

	result, err := handler.Handle(ctx, queries.GetStringQuery{Value: "noon"})
	require.NoError(t, err)
	assert.Equal(t, id.String(), result.ID)
	assert.Equal(t, "2025-03-01T12:00:00Z", result.CreatedAt)

	cached := *result
	cache.On("Get", ctx, key).Return(cached, true).Once()

	again, err := handler.Handle(ctx, queries.GetStringQuery{Value: "noon"})
	require.NoError(t, err)
	assert.Equal(t, cached, *again)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestGetStringHandler_InvalidatedFillIsReported(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStringRepository)
	cache := new(mocks.MockCache)
	id := valueobjects.NewStringID("noon")
	key := ports.StringCacheKey(id)

	repo.On("GetByID", ctx, id).Return(analyzed(t, "noon"), nil).Once()
	cache.On("Get", ctx, key).Return(nil, false).Once()
	cache.On("Version", ctx, key).Return(uint64(9)).Once()
	cache.On("SetIfUnchanged", ctx, key, mock.AnythingOfType("queries.StringResult"), 30, uint64(9)).Return(false, nil).Once()

	handler := NewGetStringHandler(repo, cache, func() int { return 30 }, zap.NewNop())

	result, err := handler.Handle(ctx, queries.GetStringQuery{Value: "noon"})
	require.NoError(t, err)
	assert.Equal(t, "noon", result.Value)
	cache.AssertExpectations(t)
}

func TestGetStringHandler_ZeroTTLSkipsCacheFill(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStringRepository)
	cache := new(mocks.MockCache)
	id := valueobjects.NewStringID("noon")
	key := ports.StringCacheKey(id)

	repo.On("GetByID", ctx, id).Return(analyzed(t, "noon"), nil).Once()
	cache.On("Get", ctx, key).Return(nil, false).Once()
	cache.On("Version", ctx, key).Return(uint64(0)).Once()

	handler := NewGetStringHandler(repo, cache, func() int { return 0 }, zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetStringQuery{Value: "noon"})
	require.NoError(t, err)
	cache.AssertNotCalled(t, "SetIfUnchanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetStringHandler_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStringRepository)
	id := valueobjects.NewStringID("ghost")
	repo.On("GetByID", ctx, id).Return(nil, entities.NewStringNotFoundError(id))

	handler := NewGetStringHandler(repo, nil, nil, zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetStringQuery{Value: "ghost"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestListStringsHandler_FiltersApplied(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStringRepository)
	filter := specifications.Filter{IsPalindrome: specifications.Bool(true)}
	repo.On("List", ctx, filter).Return([]*entities.AnalyzedString{analyzed(t, "level")}, nil)
	repo.On("List", ctx, specifications.Filter{}).Return([]*entities.AnalyzedString{}, nil)

	handler := NewListStringsHandler(repo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.ListStringsQuery{Filter: filter, Supplied: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	require.NotNil(t, result.FiltersApplied)
	assert.Equal(t, filter, *result.FiltersApplied)

	result, err = handler.Handle(ctx, queries.ListStringsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Data)
	assert.Nil(t, result.FiltersApplied)
}

func TestFilterByNaturalLanguageHandler(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStringRepository)
	want := specifications.Filter{IsPalindrome: specifications.Bool(true), WordCount: specifications.Int(1)}
	repo.On("List", ctx, want).Return([]*entities.AnalyzedString{analyzed(t, "kayak")}, nil)

	handler := NewFilterByNaturalLanguageHandler(repo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.FilterByNaturalLanguageQuery{Query: "all single word palindromic strings"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "all single word palindromic strings", result.InterpretedQuery.Original)
	assert.Equal(t, want, result.InterpretedQuery.ParsedFilters)
}

func TestFilterByNaturalLanguageHandler_Errors(t *testing.T) {
	repo := new(mocks.MockStringRepository)
	handler := NewFilterByNaturalLanguageHandler(repo, zap.NewNop())

	_, err := handler.Handle(context.Background(), queries.FilterByNaturalLanguageQuery{Query: "tell me a joke"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = handler.Handle(context.Background(), queries.FilterByNaturalLanguageQuery{Query: "longer than 10 and shorter than 5"})
	assert.True(t, pkgerrors.IsUnprocessable(err))

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
