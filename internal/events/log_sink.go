package events

import (
	"context"

	"github.com/ignite/audience-hub/internal/pkg/logger"
)

// LogSink writes every event to the structured log. Useful as a default
// sink in deployments without a downstream consumer.
type LogSink struct{}

// Emit logs the event at INFO level.
func (LogSink) Emit(_ context.Context, e Event) {
	fields := []interface{}{"event", e.Name}
	if e.Member != nil {
		fields = append(fields, "member_id", e.Member.ID)
	}
	if e.Label != nil {
		fields = append(fields, "label", e.Label.Name)
	}
	logger.Info("domain event", fields...)
}
