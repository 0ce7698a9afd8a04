package dynamodb

import (
	"context"
	"sync"
	"testing"
	"time"

	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
	pkgerrors "string-analyzer/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTable keeps items by PK and honours the attribute_(not_)exists
// conditions the repository sends. Scan ignores the filter expression.
type fakeTable struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	puts  []*dynamodb.PutItemInput
	scans []*dynamodb.ScanInput
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: make(map[string]map[string]types.AttributeValue)}
}

func pkOf(item map[string]types.AttributeValue) string {
	return item["PK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeTable) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	pk := pkOf(in.Item)
	if _, exists := f.items[pk]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	f.items[pk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[pkOf(in.Key)]}, nil
}

func (f *fakeTable) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk := pkOf(in.Key)
	if _, exists := f.items[pk]; !exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{}
	}
	delete(f.items, pk)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeTable) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, in)
	out := &dynamodb.ScanOutput{}
	for _, item := range f.items {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (f *fakeTable) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, nil
}

func mustString(t *testing.T, value string, at time.Time) *entities.AnalyzedString {
	t.Helper()
	s, err := entities.NewAnalyzedString(value, at)
	require.NoError(t, err)
	return s
}

func TestStringRepository_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	repo := NewStringRepository(table, "strings", zap.NewNop())
	in := mustString(t, "Step on no pets", time.Date(2025, 2, 2, 10, 0, 0, 5000, time.UTC))

	require.NoError(t, repo.Create(ctx, in))
	require.Len(t, table.puts, 1)
	assert.Equal(t, "attribute_not_exists (#0)", *table.puts[0].ConditionExpression)
	assert.Equal(t, "PK", table.puts[0].ExpressionAttributeNames["#0"])

	got, err := repo.GetByID(ctx, in.ID())
	require.NoError(t, err)
	assert.Equal(t, in.Value(), got.Value())
	assert.Equal(t, in.Properties(), got.Properties())
	assert.True(t, in.CreatedAt().Equal(got.CreatedAt()))

	err = repo.Create(ctx, mustString(t, "Step on no pets", time.Now()))
	assert.True(t, pkgerrors.IsConflict(err))

	require.NoError(t, repo.Delete(ctx, in.ID()))
	_, err = repo.GetByID(ctx, in.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, in.ID())))
}

func TestStringRepository_ListSortsAndFilters(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	repo := NewStringRepository(table, "strings", zap.NewNop())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, mustString(t, "refer", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, mustString(t, "two words", base)))
	require.NoError(t, repo.Create(ctx, mustString(t, "stats", base.Add(2*time.Minute))))

	all, err := repo.List(ctx, specifications.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "two words", all[0].Value())
	assert.Equal(t, "refer", all[1].Value())
	assert.Equal(t, "stats", all[2].Value())

	pal, err := repo.List(ctx, specifications.Filter{IsPalindrome: specifications.Bool(true), ContainsCharacter: specifications.String("f")})
	require.NoError(t, err)
	require.Len(t, pal, 1)
	assert.Equal(t, valueobjects.NewStringID("refer"), pal[0].ID())

	last := table.scans[len(table.scans)-1]
	require.NotNil(t, last.FilterExpression)
	assert.Contains(t, *last.FilterExpression, "contains")
}

func TestBuildFilterExpression(t *testing.T) {
	expr, err := buildFilterExpression(specifications.Filter{
		MinLength: specifications.Int(2),
		MaxLength: specifications.Int(9),
		WordCount: specifications.Int(1),
	})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, n := range expr.Names() {
		names[n] = true
	}
	assert.Equal(t, map[string]bool{"EntityType": true, "Length": true, "WordCount": true}, names)
	assert.Len(t, expr.Values(), 4)
}
