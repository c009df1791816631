package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a hold key only while it still belongs to the
// caller, so a rollback can never remove another claimant's hold.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// scanCount is the COUNT hint used when listing hold keys.
const scanCount = 200

// HoldStore keeps seat holds in Redis.  A hold is a plain string key whose
// value is the claimant ID and whose expiry is the hold TTL; Redis removes
// it on its own when the TTL elapses.
type HoldStore struct {
	rdb *redis.Client
}

// NewHoldStore returns a HoldStore bound to rdb.
func NewHoldStore(rdb *redis.Client) *HoldStore { return &HoldStore{rdb: rdb} }

// AcquireAll issues SET key owner NX EX ttl for every key inside one
// MULTI/EXEC block and reports, per key, whether the hold was taken.
// Redis runs each SET independently: some keys may be taken while others
// fail.  The returned slice is index-aligned with keys.
func (s *HoldStore) AcquireAll(ctx context.Context, keys []string, owner string, ttl time.Duration) ([]bool, error) {
	if len(keys) == 0 {
		return []bool{}, nil
	}
	cmds := make([]*redis.BoolCmd, len(keys))
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = pipe.SetNX(ctx, k, owner, ttl)
		}
		return nil
	})
	// A refused SET NX replies nil.  go-redis reports that as false today;
	// redis.Nil is accepted too so the mapping never turns into an error.
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	acquired := make([]bool, len(keys))
	for i, c := range cmds {
		if err := c.Err(); err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		acquired[i] = c.Val()
	}
	return acquired, nil
}

// Owners returns the current value of every key, "" where the key is absent
// or expired.  The result is index-aligned with keys.
func (s *HoldStore) Owners(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	owners := make([]string, len(keys))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			owners[i] = str
		}
	}
	return owners, nil
}

// ReleaseIfOwner deletes key when its value equals owner.  It reports
// whether a key was deleted.  Calling it again is always safe.
func (s *HoldStore) ReleaseIfOwner(ctx context.Context, key, owner string) (bool, error) {
	n, err := releaseScript.Run(ctx, s.rdb, []string{key}, owner).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return n == 1, nil
}

// Delete removes keys unconditionally.
func (s *HoldStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Keys lists live keys matching a glob pattern using SCAN, so a large
// keyspace never blocks the server the way KEYS would.
func (s *HoldStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})
	iter := s.rdb.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		// SCAN may return a key more than once across pages
		k := iter.Val()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
