package analytics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink counts hits in Prometheus.
type MetricsSink struct {
	pageViews *prometheus.CounterVec
	events    *prometheus.CounterVec
}

func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	s := &MetricsSink{
		pageViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_pageviews_total",
				Help: "Page views by path",
			},
			[]string{"path"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_events_total",
				Help: "Custom analytics events by action",
			},
			[]string{"action"},
		),
	}
	reg.MustRegister(s.pageViews, s.events)
	return s
}

func (s *MetricsSink) Name() string { return "metrics" }

func (s *MetricsSink) Send(_ context.Context, hit Hit) error {
	switch hit.Kind {
	case KindPageView:
		s.pageViews.WithLabelValues(hit.Path).Inc()
	case KindEvent:
		if hit.Event != nil {
			s.events.WithLabelValues(hit.Event.Action).Inc()
		}
	}
	return nil
}
