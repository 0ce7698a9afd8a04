package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"string-analyzer/domain/core/valueobjects"
	"string-analyzer/domain/events"
	apperrors "string-analyzer/pkg/errors"
)

type fakeBus struct {
	calls    []*eventbridge.PutEventsInput
	failures []error
	reject   bool
}

func (f *fakeBus) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	if f.reject {
		return &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func newTestPublisher(bus *fakeBus) *Publisher {
	p := NewPublisher(bus, "strings-bus", zap.NewNop())
	p.backoff = time.Millisecond
	return p
}

func analyzedEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, 0, n)
	for i := 0; i < n; i++ {
		value := string(rune('a' + i))
		out = append(out, events.NewStringAnalyzed(valueobjects.NewStringID(value), valueobjects.Analyze(value), time.Now().UTC()))
	}
	return out
}

func TestPublishBatch_ChunksByTen(t *testing.T) {
	bus := &fakeBus{}
	require.NoError(t, newTestPublisher(bus).PublishBatch(context.Background(), analyzedEvents(23)))

	require.Len(t, bus.calls, 3)
	assert.Len(t, bus.calls[0].Entries, 10)
	assert.Len(t, bus.calls[2].Entries, 3)

	entry := bus.calls[0].Entries[0]
	assert.Equal(t, "strings-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceService, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeStringAnalyzed, aws.ToString(entry.DetailType))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, valueobjects.NewStringID("a").String(), detail["string_id"])
}

func TestPublish_RetriesTransportErrors(t *testing.T) {
	bus := &fakeBus{failures: []error{errors.New("timeout"), errors.New("timeout")}}
	require.NoError(t, newTestPublisher(bus).Publish(context.Background(), analyzedEvents(1)[0]))
	assert.Len(t, bus.calls, 3)
}

func TestPublish_GivesUpAfterMaxRetries(t *testing.T) {
	bus := &fakeBus{failures: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	err := newTestPublisher(bus).Publish(context.Background(), analyzedEvents(1)[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.Equal(t, http.StatusBadGateway, apperrors.GetAppError(err).HTTPStatus)
}

func TestPublish_RejectedEntriesAreNotRetried(t *testing.T) {
	bus := &fakeBus{reject: true}
	err := newTestPublisher(bus).Publish(context.Background(), analyzedEvents(1)[0])
	require.Error(t, err)
	assert.Len(t, bus.calls, 1)
}

func TestPublishBatch_Empty(t *testing.T) {
	bus := &fakeBus{}
	require.NoError(t, newTestPublisher(bus).PublishBatch(context.Background(), nil))
	assert.Empty(t, bus.calls)
}
