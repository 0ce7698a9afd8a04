package decorators

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"string-analyzer/application/ports"
	"string-analyzer/domain/core/entities"
	"string-analyzer/domain/core/specifications"
	"string-analyzer/domain/core/valueobjects"
)

// TracingRepository opens one span per repository call
type TracingRepository struct {
	inner   ports.StringRepository
	tracer  trace.Tracer
	backend string
}

// NewTracingRepository wraps inner with OpenTelemetry spans
func NewTracingRepository(inner ports.StringRepository, tracer trace.Tracer, backend string) *TracingRepository {
	return &TracingRepository{inner: inner, tracer: tracer, backend: backend}
}

func (r *TracingRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", r.backend),
		attribute.String("db.operation", op),
	)
	return r.tracer.Start(ctx, "repository."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create traces inner.Create
func (r *TracingRepository) Create(ctx context.Context, s *entities.AnalyzedString) error {
	ctx, span := r.start(ctx, "Create",
		attribute.String("string.id", s.ID().String()),
		attribute.Int("string.length", s.Properties().Length),
	)
	err := r.inner.Create(ctx, s)
	finish(span, err)
	return err
}

// GetByID traces inner.GetByID
func (r *TracingRepository) GetByID(ctx context.Context, id valueobjects.StringID) (*entities.AnalyzedString, error) {
	ctx, span := r.start(ctx, "GetByID", attribute.String("string.id", id.String()))
	s, err := r.inner.GetByID(ctx, id)
	finish(span, err)
	return s, err
}

// List traces inner.List
func (r *TracingRepository) List(ctx context.Context, filter specifications.Filter) ([]*entities.AnalyzedString, error) {
	ctx, span := r.start(ctx, "List", attribute.Bool("filter.empty", filter.IsEmpty()))
	out, err := r.inner.List(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(out)))
	}
	finish(span, err)
	return out, err
}

// Delete traces inner.Delete
func (r *TracingRepository) Delete(ctx context.Context, id valueobjects.StringID) error {
	ctx, span := r.start(ctx, "Delete", attribute.String("string.id", id.String()))
	err := r.inner.Delete(ctx, id)
	finish(span, err)
	return err
}

// Ping traces inner.Ping
func (r *TracingRepository) Ping(ctx context.Context) error {
	ctx, span := r.start(ctx, "Ping")
	err := r.inner.Ping(ctx)
	finish(span, err)
	return err
}
