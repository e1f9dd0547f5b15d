package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// otherLabel replaces label values outside the known sets. Event names and
// titles arrive from remote clients, so they cannot be used as labels as is.
const otherLabel = "other"

var (
	knownEvents = labelSet(
		EventException, EventPerformanceMeasure,
		"navigation", "assessment_completed",
		"chatbot_view", "chatbot_message_sent", "chatbot_response_received", "chatbot_error",
	)
	knownTitles = labelSet(
		"API Error", "Uncaught Panic", "Unhandled Async Error",
		"Resource Loading Error", "Performance Measure Error",
	)
	knownMeasures = labelSet("chatbot_api_call")
	measureKinds  = labelSet(measureSync, measureAsync)
)

func labelSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func bounded(set map[string]bool, value string) string {
	if set[value] {
		return value
	}
	return otherLabel
}

// PrometheusSink turns forwarded events into counters and latency histograms.
type PrometheusSink struct {
	events     *prometheus.CounterVec
	exceptions *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

func NewPrometheusSink(namespace string, reg prometheus.Registerer) (*PrometheusSink, error) {
	if namespace == "" {
		namespace = "yai"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	sink := &PrometheusSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_events_total",
			Help:      "Telemetry events received, by name.",
		}, []string{"name"}),
		exceptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_exceptions_total",
			Help:      "Captured error records, by title.",
		}, []string{"title"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "measure_duration_seconds",
			Help:      "Duration of measured units of work.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name", "type"}),
	}

	events, err := register(reg, sink.events)
	if err != nil {
		return nil, err
	}
	exceptions, err := register(reg, sink.exceptions)
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, sink.durations)
	if err != nil {
		return nil, err
	}
	sink.events, sink.exceptions, sink.durations = events, exceptions, durations
	return sink, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register telemetry metric: %w", err)
	}
	return c, nil
}

func (s *PrometheusSink) Send(_ context.Context, event Event) error {
	s.events.WithLabelValues(bounded(knownEvents, event.Name)).Inc()

	switch event.Name {
	case EventException:
		title, _ := event.Params["description"].(string)
		s.exceptions.WithLabelValues(bounded(knownTitles, title)).Inc()
	case EventPerformanceMeasure:
		name, _ := event.Params["measure_name"].(string)
		kind, _ := event.Params["type"].(string)
		ms, ok := toInt64(event.Params["duration"])
		if !ok {
			return fmt.Errorf("performance event %q has no numeric duration", name)
		}
		s.durations.WithLabelValues(bounded(knownMeasures, name), bounded(measureKinds, kind)).Observe((time.Duration(ms) * time.Millisecond).Seconds())
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
