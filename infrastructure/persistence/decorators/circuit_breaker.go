// Package decorators wraps a StringRepository with cross-cutting behavior:
// circuit breaking, tracing and metrics.
package decorators

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"string-analyzer/application/ports"
	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
	appErrors "string-analyzer/pkg/errors"
)

// CircuitBreakerConfig holds configuration for the repository breaker
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns the default breaker settings
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreakerRepository fails fast once the storage backend keeps erroring
type CircuitBreakerRepository struct {
	inner ports.StringRepository
	cb    *gobreaker.CircuitBreaker
	name  string
}

// NewCircuitBreakerRepository wraps inner with a gobreaker circuit breaker.
// Not-found, conflict and validation outcomes count as successes: they are
// answers from a healthy backend.
func NewCircuitBreakerRepository(inner ports.StringRepository, config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreakerRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isBackendHealthy,
	})

	return &CircuitBreakerRepository{inner: inner, cb: cb, name: config.Name}
}

func isBackendHealthy(err error) bool {
	if err == nil {
		return true
	}
	return appErrors.IsNotFound(err) ||
		appErrors.IsConflict(err) ||
		appErrors.IsValidation(err) ||
		errors.Is(err, context.Canceled)
}

// State reports the breaker state
func (r *CircuitBreakerRepository) State() gobreaker.State {
	return r.cb.State()
}

func (r *CircuitBreakerRepository) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, appErrors.NewUnavailableError(r.name).WithCause(err)
	}
	return result, err
}

// Create stores s through the breaker
func (r *CircuitBreakerRepository) Create(ctx context.Context, s *entities.AnalyzedString) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.Create(ctx, s)
	})
	return err
}

// GetByID reads one record through the breaker
func (r *CircuitBreakerRepository) GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error) {
	result, err := r.execute(func() (interface{}, error) {
		return r.inner.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*entities.AnalyzedString), nil
}

// List reads matching records through the breaker
func (r *CircuitBreakerRepository) List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error) {
	result, err := r.execute(func() (interface{}, error) {
		return r.inner.List(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*entities.AnalyzedString), nil
}

// Delete removes a record through the breaker
func (r *CircuitBreakerRepository) Delete(ctx context.Context, id valueobjects.StringID) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.Delete(ctx, id)
	})
	return err
}

// Ping bypasses the breaker so readiness reflects the backend itself
func (r *CircuitBreakerRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}
