package eventbus

import (
	"context"
	"log/slog"
)

// Logger subscribes to a bus and records every event through slog. It is the
// server's audit trail for task changes.
type Logger struct {
	bus *Bus
}

func NewLogger(bus *Bus) *Logger {
	return &Logger{bus: bus}
}

// Start consumes events until ctx is cancelled.
func (l *Logger) Start(ctx context.Context) {
	id, ch := l.bus.Subscribe(64)
	defer l.bus.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			attrs := []any{
				"event_id", event.ID,
				"type", string(event.Type),
				"resource_id", event.ResourceID,
			}
			for k, v := range event.Metadata {
				attrs = append(attrs, k, v)
			}
			slog.InfoContext(ctx, "event", attrs...)
		}
	}
}
