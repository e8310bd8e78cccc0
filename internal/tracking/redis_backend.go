package tracking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps one hash field per tracking id, so every mutation is
// a per-key write with no whole-snapshot rewrite and no lost-update
// window between concurrent processes.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend creates a Redis-backed store using the given client.
// All records live in a single hash under key.
func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = "engage:records"
	}
	return &RedisBackend{client: client, key: key}
}

func (r *RedisBackend) Load(ctx context.Context) ([]*EmailRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load: %w", err)
	}

	recs := make([]*EmailRecord, 0, len(fields))
	for id, raw := range fields {
		var rec EmailRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("redis record %s: %w", id, err)
		}
		recs = append(recs, &rec)
	}
	return sortByTimestamp(recs), nil
}

func (r *RedisBackend) Put(ctx context.Context, rec *EmailRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.key, rec.ID, raw).Err(); err != nil {
		return fmt.Errorf("redis put %s: %w", rec.ID, err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key, ids...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (r *RedisBackend) Replace(ctx context.Context, recs []*EmailRecord) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key)
	for _, rec := range recs {
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		pipe.HSet(ctx, r.key, rec.ID, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis replace: %w", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
