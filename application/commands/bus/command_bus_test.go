package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct {
	invalid bool
}

func (c pingCommand) Validate() error {
	if c.invalid {
		return errors.New("ping is invalid")
	}
	return nil
}

type recordedExecution struct {
	name string
	err  error
}

type recordingMetrics struct {
	executions []recordedExecution
	errors     []string
}

func (m *recordingMetrics) RecordError(ctx context.Context, errorType string, errorCode string) {
	m.errors = append(m.errors, errorType+"/"+errorCode)
}

func (m *recordingMetrics) RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error) {
	m.executions = append(m.executions, recordedExecution{name: commandName, err: err})
}

func TestCommandBus_Send(t *testing.T) {
	metrics := &recordingMetrics{}
	b := NewCommandBusWithDependencies(metrics)

	calls := 0
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		calls++
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), pingCommand{}))
	assert.Equal(t, 1, calls)
	require.Len(t, metrics.executions, 1)
	assert.Equal(t, "pingCommand", metrics.executions[0].name)
	assert.NoError(t, metrics.executions[0].err)
}

func TestCommandBus_RegisterTwice(t *testing.T) {
	b := NewCommandBus()
	h := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, b.Register(pingCommand{}, h))
	assert.Error(t, b.Register(pingCommand{}, h))
}

func TestCommandBus_Errors(t *testing.T) {
	handlerErr := errors.New("boom")
	metrics := &recordingMetrics{}
	b := NewCommandBusWithDependencies(metrics)
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return handlerErr
	})))

	err := b.Send(context.Background(), pingCommand{invalid: true})
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = b.Send(context.Background(), pingCommand{})
	assert.ErrorIs(t, err, ErrExecutionFailed)
	assert.ErrorIs(t, err, handlerErr)

	type otherCommand struct{ pingCommand }
	err = b.Send(context.Background(), otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	assert.Equal(t, []string{"validation/pingCommand", "execution/pingCommand"}, metrics.errors)
	require.Len(t, metrics.executions, 1)
	assert.ErrorIs(t, metrics.executions[0].err, handlerErr)
}

func TestPipeline_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	b := NewCommandBusWithDependencies(nil, tag("outer"), tag("inner"))
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), pingCommand{}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
