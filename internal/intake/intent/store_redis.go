package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	id "amparo/pkg/domain"
)

const keyPrefix = "intent:upload:"

// RedisStore keeps upload intents in Redis, one key per (claim, digest) with
// a TTL so crashed uploads age out on their own.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed intent store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(claimID id.ClaimID, digest string) string {
	return keyPrefix + claimID.String() + ":" + digest
}

func (s *RedisStore) Begin(ctx context.Context, claimID id.ClaimID, digest string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(claimID, digest), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("begin upload intent: %w", err)
	}
	return nil
}

func (s *RedisStore) Complete(ctx context.Context, claimID id.ClaimID, digest string) error {
	if err := s.client.Del(ctx, key(claimID, digest)).Err(); err != nil {
		return fmt.Errorf("complete upload intent: %w", err)
	}
	return nil
}

func (s *RedisStore) Scan(ctx context.Context) ([]Record, error) {
	var (
		records []Record
		cursor  uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan upload intents: %w", err)
		}
		for _, k := range keys {
			record, ok := parseKey(k)
			if !ok {
				continue
			}
			if raw, err := s.client.Get(ctx, k).Result(); err == nil {
				if t, err := time.Parse(time.RFC3339, raw); err == nil {
					record.StartedAt = t
				}
			}
			records = append(records, record)
		}
		cursor = next
		if cursor == 0 {
			return records, nil
		}
	}
}

func parseKey(k string) (Record, bool) {
	rest, ok := strings.CutPrefix(k, keyPrefix)
	if !ok {
		return Record{}, false
	}
	claimRaw, digest, ok := strings.Cut(rest, ":")
	if !ok {
		return Record{}, false
	}
	claimID, err := id.ParseClaimID(claimRaw)
	if err != nil {
		return Record{}, false
	}
	return Record{ClaimID: claimID, Digest: digest}, true
}
