package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver aggregates events into Prometheus metrics. Every event
// increments events_total; events carrying the well-known Data keys also feed
// the duration, tool, and outcome series.
type PrometheusObserver struct {
	events    *prometheus.CounterVec
	durations *prometheus.HistogramVec
	toolCalls *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
}

// NewPrometheusObserver creates the metric vectors under namespace and
// registers them with reg.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of observability events by type and level.",
			},
			[]string{"type", "level"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_duration_seconds",
				Help:      "Duration reported by timed events.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Completed tool calls by tool name and error flag.",
			},
			[]string{"tool", "error"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Resolved invocations by outcome kind.",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{o.events, o.durations, o.toolCalls, o.outcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) OnEvent(_ context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()

	if ms, ok := number(event.Data[KeyDurationMS]); ok {
		o.durations.WithLabelValues(string(event.Type)).Observe(ms / 1000)
	}

	if tool, ok := event.Data[KeyTool].(string); ok {
		if failed, ok := event.Data[KeyError].(bool); ok {
			o.toolCalls.WithLabelValues(tool, strconv.FormatBool(failed)).Inc()
		}
	}

	if kind, ok := event.Data[KeyOutcome].(string); ok {
		o.outcomes.WithLabelValues(kind).Inc()
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
