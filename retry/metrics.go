package retry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/gaborage/go-session/retry"

	metricAttempts  = "retry.attempts"  // Counter of executed attempts
	metricExhausted = "retry.exhausted" // Counter of calls that spent their whole budget

	attrOperation = "retry.operation"
	attrOutcome   = "retry.outcome"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// instruments holds the metric instruments of one Retrier.
// Instruments are nil when creation failed, which disables recording.
type instruments struct {
	attempts  metric.Int64Counter
	exhausted metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	attempts, err := meter.Int64Counter(
		metricAttempts,
		metric.WithDescription("Number of attempts executed by retriers"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return &instruments{}, err
	}

	exhausted, err := meter.Int64Counter(
		metricExhausted,
		metric.WithDescription("Number of calls that failed on every attempt"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return &instruments{attempts: attempts}, err
	}

	return &instruments{attempts: attempts, exhausted: exhausted}, nil
}

func (i *instruments) recordAttempt(ctx context.Context, operation string, err error) {
	if i == nil || i.attempts == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	i.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrOutcome, outcome),
	))
}

func (i *instruments) recordExhausted(ctx context.Context, operation string) {
	if i == nil || i.exhausted == nil {
		return
	}
	i.exhausted.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOperation, operation)))
}
