package decorators

import (
	"context"
	"time"

	"string-analyzer/application/ports"
	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
)

// OperationRecorder receives one observation per repository call
type OperationRecorder interface {
	RecordDBOperation(operation, backend string, duration time.Duration, err error)
}

// MetricsRepository times every repository call
type MetricsRepository struct {
	inner    ports.StringRepository
	recorder OperationRecorder
	backend  string
}

// NewMetricsRepository wraps inner so each call is recorded
func NewMetricsRepository(inner ports.StringRepository, recorder OperationRecorder, backend string) *MetricsRepository {
	return &MetricsRepository{inner: inner, recorder: recorder, backend: backend}
}

func (r *MetricsRepository) observe(op string, start time.Time, err error) {
	r.recorder.RecordDBOperation(op, r.backend, time.Since(start), err)
}

// Create records inner.Create
func (r *MetricsRepository) Create(ctx context.Context, s *entities.AnalyzedString) error {
	start := time.Now()
	err := r.inner.Create(ctx, s)
	r.observe("create", start, err)
	return err
}

// GetByID records inner.GetByID
func (r *MetricsRepository) GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error) {
	start := time.Now()
	s, err := r.inner.GetByID(ctx, id)
	r.observe("get", start, err)
	return s, err
}

// List records inner.List
func (r *MetricsRepository) List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error) {
	start := time.Now()
	out, err := r.inner.List(ctx, filter)
	r.observe("list", start, err)
	return out, err
}

// Delete records inner.Delete
func (r *MetricsRepository) Delete(ctx context.Context, id valueobjects.StringID) error {
	start := time.Now()
	err := r.inner.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}

// Ping records inner.Ping
func (r *MetricsRepository) Ping(ctx context.Context) error {
	start := time.Now()
	err := r.inner.Ping(ctx)
	r.observe("ping", start, err)
	return err
}
