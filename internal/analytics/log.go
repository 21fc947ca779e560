package analytics

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes hits as debug log lines.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(_ context.Context, hit Hit) error {
	ev := s.log.Debug().
		Str("client", hit.ClientID).
		Str("kind", string(hit.Kind))
	if hit.Kind == KindPageView {
		ev = ev.Str("path", hit.Path).Str("title", hit.Title)
	}
	if hit.Event != nil {
		ev = ev.Str("category", hit.Event.Category).
			Str("action", hit.Event.Action).
			Str("label", hit.Event.Label).
			Int("value", hit.Event.Value)
	}
	ev.Msg("analytics hit")
	return nil
}
