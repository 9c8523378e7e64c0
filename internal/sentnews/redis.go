package sentnews

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// recordScript sets the record key only if absent and indexes it by sent_at
// in the same atomic step.
//
// KEYS[1] record key, KEYS[2] index key; ARGV[1] symbol, ARGV[2] sent_at (unix seconds)
var recordScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	redis.call('ZADD', KEYS[2], ARGV[2], KEYS[1])
	return 1
end
return 0
`)

// RedisStore keeps one key per (news_id, channel_id) and a sorted set of
// record keys scored by sent_at for eviction.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    Clock
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps a client. Keys are namespaced by prefix.
func NewRedisStore(client *redis.Client, prefix string, now Clock) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{client: client, prefix: prefix, now: now}
}

// recordKey length-prefixes the channel id so ids containing ':' cannot
// collide.
func (s *RedisStore) recordKey(newsID, channelID string) string {
	return s.prefix + "sent:" + strconv.Itoa(len(channelID)) + ":" + channelID + ":" + newsID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "sent:index"
}

// Init has no schema to create; it only verifies connectivity.
func (s *RedisStore) Init(ctx context.Context) error {
	return s.Ping(ctx)
}

func (s *RedisStore) WasSent(ctx context.Context, newsID, channelID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.recordKey(newsID, channelID)).Result()
	if err != nil {
		return false, fmt.Errorf("check sent news %s/%s: %w", newsID, channelID, err)
	}
	return n > 0, nil
}

func (s *RedisStore) RecordSent(ctx context.Context, newsID, symbol, channelID string) (Outcome, error) {
	if err := validateKey(newsID, channelID); err != nil {
		return Duplicate, err
	}

	keys := []string{s.recordKey(newsID, channelID), s.indexKey()}
	set, err := recordScript.Run(ctx, s.client, keys, symbol, s.now().Unix()).Int()
	if err != nil {
		return Duplicate, fmt.Errorf("record sent news %s/%s: %w", newsID, channelID, err)
	}

	if set == 0 {
		return Duplicate, nil
	}
	return Recorded, nil
}

func (s *RedisStore) EvictOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention).Unix()

	// Exclusive upper bound: only records strictly before the cutoff.
	keys, err := s.client.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("scan sent news index: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	members := make([]any, len(keys))
	for i, k := range keys {
		members[i] = k
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("evict sent news: %w", err)
	}

	return int64(len(keys)), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
