package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pageza/recipesnap/backend/internal/telemetry"
	"github.com/pageza/recipesnap/backend/internal/types"
)

type suggestInstruments struct {
	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

var (
	suggestMetricsOnce sync.Once
	suggestMetrics     suggestInstruments
)

func loadSuggestInstruments() suggestInstruments {
	suggestMetricsOnce.Do(func() {
		meter := telemetry.Meter()
		// instrument creation only fails on invalid names; the no-op
		// instruments returned alongside the error are still usable
		suggestMetrics.requests, _ = meter.Int64Counter("recipesnap.suggest.requests",
			metric.WithDescription("Suggestion requests sent to the LLM provider"))
		suggestMetrics.failures, _ = meter.Int64Counter("recipesnap.suggest.failures",
			metric.WithDescription("Suggestion requests that returned an error"))
		suggestMetrics.duration, _ = meter.Float64Histogram("recipesnap.suggest.duration",
			metric.WithDescription("Latency of suggestion requests"),
			metric.WithUnit("s"))
	})
	return suggestMetrics
}

// instrumentSuggest wraps a provider call in a span and records its outcome
func instrumentSuggest(ctx context.Context, provider, model string, fn func(context.Context) ([]types.Recipe, error)) ([]types.Recipe, error) {
	inst := loadSuggestInstruments()
	attrs := []attribute.KeyValue{
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	}

	ctx, span := telemetry.Tracer().Start(ctx, "recipesnap.suggest", trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	recipes, err := fn(ctx)
	opt := metric.WithAttributes(attrs...)

	inst.requests.Add(ctx, 1, opt)
	inst.duration.Record(ctx, time.Since(start).Seconds(), opt)
	if err != nil {
		inst.failures.Add(ctx, 1, opt)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("recipes.count", len(recipes)))
	return recipes, nil
}
