package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMaxLen caps a stream at roughly this many entries.
const DefaultMaxLen = 10000

// Publisher appends events to a single Redis stream. Each entry carries the
// event type in "type" and the JSON envelope in "event".
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
	now    func() time.Time
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream, maxLen: DefaultMaxLen, now: time.Now}
}

func (p *Publisher) Stream() string { return p.stream }

func (p *Publisher) Publish(ctx context.Context, eventType string, data any) error {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: p.now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", eventType, err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"type":  eventType,
			"event": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("events: publish %s to %s: %w", eventType, p.stream, err)
	}
	return nil
}
