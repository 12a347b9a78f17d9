package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hris-auth/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	LoginCodePrefix    = "hris:code:login"
	RecoveryCodePrefix = "hris:code:recovery"

	// maxTxRetries bounds optimistic retries when a watched key changes
	// without its code changing.
	maxTxRetries = 3
)

// RedisCodeRegistry shares pending codes between service instances. Keys
// expire after the ttl given to Set, so Redis enforces the code lifetime as
// well. Conditional writes run under WATCH/MULTI.
type RedisCodeRegistry struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisCodeRegistry(client *redis.Client, prefix string, log *zap.Logger) *RedisCodeRegistry {
	return &RedisCodeRegistry{
		client: client,
		prefix: prefix,
		log:    log.With(zap.String("repository", "code_registry"), zap.String("prefix", prefix)),
	}
}

func (r *RedisCodeRegistry) key(email string) string {
	return fmt.Sprintf("%s:%s", r.prefix, email)
}

func (r *RedisCodeRegistry) Set(ctx context.Context, email string, entry *entity.CodeEntry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal code entry for %s: %w", email, err)
	}

	if ttl <= 0 {
		// already expired: nothing worth keeping
		return r.Delete(ctx, email)
	}

	if err := r.client.Set(ctx, r.key(email), data, ttl).Err(); err != nil {
		r.log.Error("Failed to store code entry", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("store code entry for %s: %w", email, err)
	}

	return nil
}

func (r *RedisCodeRegistry) Get(ctx context.Context, email string) (*entity.CodeEntry, error) {
	data, err := r.client.Get(ctx, r.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to read code entry", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("read code entry for %s: %w", email, err)
	}

	var entry entity.CodeEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal code entry for %s: %w", email, err)
	}

	return &entry, nil
}

func (r *RedisCodeRegistry) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		r.log.Error("Failed to delete code entry", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("delete code entry for %s: %w", email, err)
	}

	return nil
}

// MarkVerified flips Verified on the stored entry and keeps its remaining TTL.
func (r *RedisCodeRegistry) MarkVerified(ctx context.Context, email, code string) (bool, error) {
	return r.whenCode(ctx, email, code, "mark code verified", func(pipe redis.Pipeliner, key string, entry *entity.CodeEntry) error {
		entry.Verified = true
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal code entry for %s: %w", email, err)
		}
		pipe.Set(ctx, key, data, redis.KeepTTL)
		return nil
	})
}

func (r *RedisCodeRegistry) DeleteIf(ctx context.Context, email, code string) (bool, error) {
	return r.whenCode(ctx, email, code, "delete code entry", func(pipe redis.Pipeliner, key string, _ *entity.CodeEntry) error {
		pipe.Del(ctx, key)
		return nil
	})
}

// whenCode runs apply in a MULTI block only if the watched entry still holds code.
func (r *RedisCodeRegistry) whenCode(
	ctx context.Context,
	email, code, action string,
	apply func(pipe redis.Pipeliner, key string, entry *entity.CodeEntry) error,
) (bool, error) {
	key := r.key(email)

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		matched := false
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}

			var entry entity.CodeEntry
			if err := json.Unmarshal(data, &entry); err != nil {
				return fmt.Errorf("unmarshal code entry for %s: %w", email, err)
			}
			if entry.Code != code {
				return nil
			}

			if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return apply(pipe, key, &entry)
			}); err != nil {
				return err
			}
			matched = true
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			r.log.Error("Failed to "+action, zap.Error(err), zap.String("email", email))
			return false, fmt.Errorf("%s for %s: %w", action, email, err)
		}
		return matched, nil
	}

	r.log.Warn("Gave up on contended code entry", zap.String("email", email), zap.String("action", action))
	return false, fmt.Errorf("%s for %s: %w", action, email, redis.TxFailedErr)
}
