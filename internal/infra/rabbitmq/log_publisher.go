package rabbitmq

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher stands in when no broker is configured; events are only logged.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, pattern string, data any) error {
	msg := NewEnvelope(pattern, data)
	p.logger.Info("event", zap.String("pattern", pattern), zap.String("message_id", msg.ID), zap.Any("data", data))
	return nil
}
