package telemetry

import (
	"fmt"
	"runtime/debug"
	"time"
)

const (
	EventPerformanceMeasure = "performance_measure"

	measureSync  = "sync"
	measureAsync = "async"
)

// Outcome carries the result of work started with MeasureAsync.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Measure runs fn, records its duration as a performance_measure event and
// returns its result unchanged. Failures are logged before being returned;
// panics are logged and re-raised.
func Measure[T any](h *Harness, name string, fn func() (T, error)) (T, error) {
	return measure(h, name, measureSync, fn)
}

// MeasureAsync runs fn in its own goroutine and delivers the outcome on the
// returned channel, which receives exactly one value.
func MeasureAsync[T any](h *Harness, name string, fn func() (T, error)) <-chan Outcome[T] {
	out := make(chan Outcome[T], 1)
	run := func() error {
		defer close(out)
		var o Outcome[T]
		defer func() {
			if r := recover(); r != nil {
				o.Err = panicError{value: r}
			}
			out <- o
		}()
		o.Value, o.Err = measure(h, name, measureAsync, fn)
		return nil
	}
	tracked := h.track()
	go func() {
		if tracked {
			defer h.tasks.Done()
		}
		_ = run()
	}()
	return out
}

func measure[T any](h *Harness, name, kind string, fn func() (T, error)) (result T, err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if r := recover(); r != nil {
			h.ReportPanic("Performance Measure Error", r, debug.Stack(), measureContext(name, elapsed))
			panic(r)
		}
		if err != nil {
			h.LogError("Performance Measure Error", err, measureContext(name, elapsed))
		}
		h.TrackEvent(EventPerformanceMeasure, map[string]any{
			"measure_name": name,
			"duration":     elapsed.Milliseconds(),
			"type":         kind,
		})
	}()
	return fn()
}

func measureContext(name string, elapsed time.Duration) map[string]any {
	return map[string]any{"measure_name": name, "duration": elapsed.Milliseconds()}
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}
