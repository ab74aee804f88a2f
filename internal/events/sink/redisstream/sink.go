// Package redisstream appends chain events to a Redis stream, a lightweight
// alternative to the Kafka sink for single-host indexer deployments.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"patrolfund/internal/events"
)

// StreamKey is the Redis stream the sink appends to.
const StreamKey = "patrolfund:events"

type Sink struct {
	client *goredis.Client
	maxLen int64
}

// New builds a Redis stream sink. maxLen caps the stream with approximate
// trimming; zero means unbounded.
func New(client *goredis.Client, maxLen int64) *Sink {
	return &Sink{client: client, maxLen: maxLen}
}

func (s *Sink) Send(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	args := &goredis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]any{
			"id":      event.ID,
			"type":    string(event.Type),
			"payload": payload,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd event %s: %w", event.ID, err)
	}
	return nil
}
