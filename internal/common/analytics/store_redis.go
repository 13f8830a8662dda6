// internal/common/analytics/store_redis.go
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scheme-finder/internal/models"
)

// RedisStore appends events to a stream. Entries are kept indefinitely
// unless maxLen is positive, in which case the stream is trimmed to about
// that many entries.
type RedisStore struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStore(client *redis.Client, stream string, maxLen int64) *RedisStore {
	return &RedisStore{client: client, stream: stream, maxLen: maxLen}
}

func (r *RedisStore) Append(ctx context.Context, event models.AnalyticsEvent) error {
	meta, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"id":           event.ID,
			"action":       event.Action,
			"actorId":      event.ActorID,
			"outcome":      event.Outcome,
			"errorMessage": event.ErrorMessage,
			"metadata":     string(meta),
			"timestamp":    event.Timestamp.Format(time.RFC3339Nano),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}
