package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/audience-hub/internal/pkg/logger"
)

// DefaultChannel is the redis pub/sub channel events are published to when
// the config does not name one.
const DefaultChannel = "audience.events"

// RedisSink publishes events as JSON to a redis pub/sub channel so that
// out-of-process consumers (analytics pipelines, webhook dispatchers) can
// react without polling the database.
//
// Publishing is best-effort: a redis outage must never fail the member
// write that triggered the event, so errors are logged and swallowed.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink creates a sink publishing to the given channel.
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{client: client, channel: channel}
}

// Emit publishes the event. The open transaction handle, if any, is not
// part of the payload.
func (s *RedisSink) Emit(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Error("marshal event", "event", e.Name, "error", err)
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		logger.Warn("publish event", "event", e.Name, "channel", s.channel, "error", err)
	}
}
