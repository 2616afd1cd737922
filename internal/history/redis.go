// internal/history/redis.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for room action logs.
var DefaultQueueName = "party_actions"

// ActionRecord holds the minimal info needed by the historian service.
// The live server only ever writes these; nothing in the game path reads
// them back.
type ActionRecord struct {
	RoomID      string                 `json:"room_id"`
	ActionIndex int                    `json:"action_index"`
	ActorID     uuid.UUID              `json:"actor_id"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// Publisher pushes accepted room actions onto a Redis queue for the
// historian to drain. A nil *Publisher is a valid no-op sink, so callers
// never branch on whether history is configured.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// Connect initializes a Publisher against the given Redis address and
// verifies connectivity with a short ping.
func Connect(addr, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue}, nil
}

// Publish serializes the record to JSON and pushes it onto the queue.
// Quick network send only; the caller holds no lock across it.
func (p *Publisher) Publish(ctx context.Context, record ActionRecord) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
