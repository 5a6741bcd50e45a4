package telemetry

import "testing"

func TestNewAndObserveDoNotPanic(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.ObserveStep(1.5)
	r.ObserveRetry()
	r.ObserveEvent()
}

func TestRecorderSatisfiesSchedulerTelemetry(t *testing.T) {
	var _ interface {
		ObserveStep(now float64)
		ObserveRetry()
		ObserveEvent()
	} = (*Recorder)(nil)
}
