// Package telemetry instruments the scheduler with OpenTelemetry metrics.
// It implements scheduler.Telemetry by duck typing; the scheduler package
// never imports this one.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/flatspace/worldline/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Recorder tracks engine progress as OTel counters and a gauge over the
// current simulation time. Use New to build one; the zero value is not
// usable.
type Recorder struct {
	ctx context.Context

	steps   metric.Int64Counter
	retries metric.Int64Counter
	events  metric.Int64Counter
	now     metric.Float64ObservableGauge

	lastNow float64
}

// New creates a Recorder wired to the global OTel meter provider (a no-op
// provider if none was configured by the caller).
func New() (*Recorder, error) {
	m := meter()
	r := &Recorder{ctx: context.Background()}

	var err error
	r.steps, err = m.Int64Counter(
		"worldline.scheduler.steps",
		metric.WithDescription("Number of scheduler steps taken"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating steps counter: %w", err)
	}

	r.retries, err = m.Int64Counter(
		"worldline.scheduler.retries",
		metric.WithDescription("Number of RetrySmallerStep bisections"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating retries counter: %w", err)
	}

	r.events, err = m.Int64Counter(
		"worldline.scheduler.events",
		metric.WithDescription("Number of events committed to the event log"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating events counter: %w", err)
	}

	r.now, err = m.Float64ObservableGauge(
		"worldline.scheduler.now",
		metric.WithDescription("Current committed world coordinate time"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating now gauge: %w", err)
	}

	_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveFloat64(r.now, r.lastNow)
		return nil
	}, r.now)
	if err != nil {
		return nil, fmt.Errorf("telemetry: registering now callback: %w", err)
	}

	return r, nil
}

// ObserveStep records a completed scheduler step at coordinate time now.
func (r *Recorder) ObserveStep(now float64) {
	r.lastNow = now
	r.steps.Add(r.ctx, 1)
}

// ObserveRetry records a RetrySmallerStep bisection.
func (r *Recorder) ObserveRetry() {
	r.retries.Add(r.ctx, 1)
}

// ObserveEvent records one event committed to the world's event log.
func (r *Recorder) ObserveEvent() {
	r.events.Add(r.ctx, 1)
}
