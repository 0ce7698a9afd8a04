package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
	pkgerrors "string-analyzer/pkg/errors"
	"string-analyzer/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	entityTypeString = "STRING"
	metadataSK       = "METADATA"
)

// API is the subset of the DynamoDB client used by the repository
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// StringRepository implements the StringRepository port using DynamoDB
type StringRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewStringRepository creates a new StringRepository
func NewStringRepository(client API, tableName string, logger *zap.Logger) *StringRepository {
	return &StringRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// stringItem represents the DynamoDB item structure for an analyzed string
type stringItem struct {
	PK                    string         `dynamodbav:"PK"`
	SK                    string         `dynamodbav:"SK"`
	EntityType            string         `dynamodbav:"EntityType"`
	StringID              string         `dynamodbav:"StringID"`
	Value                 string         `dynamodbav:"Value"`
	Length                int            `dynamodbav:"Length"`
	IsPalindrome          bool           `dynamodbav:"IsPalindrome"`
	UniqueCharacters      int            `dynamodbav:"UniqueCharacters"`
	WordCount             int            `dynamodbav:"WordCount"`
	CharacterFrequencyMap map[string]int `dynamodbav:"CharacterFrequencyMap"`
	CreatedAt             string         `dynamodbav:"CreatedAt"`
}

func partitionKey(id valueobjects.StringID) string {
	return fmt.Sprintf("STRING#%s", id.String())
}

func itemKey(id valueobjects.StringID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func toItem(s *entities.AnalyzedString) stringItem {
	props := s.Properties()
	return stringItem{
		PK:                    partitionKey(s.ID()),
		SK:                    metadataSK,
		EntityType:            entityTypeString,
		StringID:              s.ID().String(),
		Value:                 s.Value(),
		Length:                props.Length,
		IsPalindrome:          props.IsPalindrome,
		UniqueCharacters:      props.UniqueCharacters,
		WordCount:             props.WordCount,
		CharacterFrequencyMap: props.CharacterFrequencyMap,
		CreatedAt:             utils.FormatRFC3339(s.CreatedAt()),
	}
}

func fromItem(item stringItem) (*entities.AnalyzedString, error) {
	id, err := valueobjects.StringIDFromHash(item.StringID)
	if err != nil {
		return nil, err
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt on %s: %w", item.PK, err)
	}

	props := valueobjects.Properties{
		Length:                item.Length,
		IsPalindrome:          item.IsPalindrome,
		UniqueCharacters:      item.UniqueCharacters,
		WordCount:             item.WordCount,
		SHA256Hash:            id.String(),
		CharacterFrequencyMap: item.CharacterFrequencyMap,
	}
	return entities.ReconstructAnalyzedString(id, item.Value, props, createdAt)
}

// Create stores a new string. The put is conditional so concurrent creates
// of the same value yield exactly one success.
func (r *StringRepository) Create(ctx context.Context, s *entities.AnalyzedString) error {
	av, err := attributevalue.MarshalMap(toItem(s))
	if err != nil {
		return fmt.Errorf("failed to marshal string: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return entities.NewStringExistsError(s.ID())
		}
		r.logger.Error("Failed to save string to DynamoDB",
			zap.Error(err),
			zap.String("stringID", s.ID().String()),
		)
		return pkgerrors.NewDatabaseError("put string", err)
	}

	r.logger.Debug("Saved string to DynamoDB", zap.String("stringID", s.ID().String()))
	return nil
}

// GetByID retrieves a string by its content hash
func (r *StringRepository) GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get string", err)
	}
	if len(out.Item) == 0 {
		return nil, entities.NewStringNotFoundError(id)
	}

	var item stringItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal string: %w", err)
	}
	return fromItem(item)
}

// List scans the table with the filter pushed down as a filter expression
func (r *StringRepository) List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error) {
	expr, err := buildFilterExpression(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	out := make([]*entities.AnalyzedString, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan strings", err)
		}

		var items []stringItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal strings: %w", err)
		}
		for _, item := range items {
			s, err := fromItem(item)
			if err != nil {
				r.logger.Warn("Skipping malformed string item", zap.String("PK", item.PK), zap.Error(err))
				continue
			}
			if filter.Matches(s) {
				out = append(out, s)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

// Delete removes a string, failing with not found when it is absent
func (r *StringRepository) Delete(ctx context.Context, id valueobjects.StringID) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      itemKey(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return entities.NewStringNotFoundError(id)
		}
		return pkgerrors.NewDatabaseError("delete string", err)
	}
	return nil
}

// Ping checks the table is reachable
func (r *StringRepository) Ping(ctx context.Context) error {
	if _, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	}); err != nil {
		return pkgerrors.NewDatabaseError("describe table", err)
	}
	return nil
}

// buildFilterExpression converts a Filter into a scan filter. The entity
// type condition is always present so the builder never sees an empty filter.
func buildFilterExpression(filter specifications.Filter) (expression.Expression, error) {
	cond := expression.Name("EntityType").Equal(expression.Value(entityTypeString))

	if filter.IsPalindrome != nil {
		cond = cond.And(expression.Name("IsPalindrome").Equal(expression.Value(*filter.IsPalindrome)))
	}
	if filter.MinLength != nil {
		cond = cond.And(expression.Name("Length").GreaterThanEqual(expression.Value(*filter.MinLength)))
	}
	if filter.MaxLength != nil {
		cond = cond.And(expression.Name("Length").LessThanEqual(expression.Value(*filter.MaxLength)))
	}
	if filter.WordCount != nil {
		cond = cond.And(expression.Name("WordCount").Equal(expression.Value(*filter.WordCount)))
	}
	if filter.ContainsCharacter != nil {
		cond = cond.And(expression.Contains(expression.Name("Value"), *filter.ContainsCharacter))
	}

	return expression.NewBuilder().WithFilter(cond).Build()
}
