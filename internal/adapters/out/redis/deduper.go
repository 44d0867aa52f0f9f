// Package redis keeps short-lived markers in Redis for gateway callback
// deduplication.
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "parcelshare:callback"
	DefaultTTL    = 24 * time.Hour
)

// CallbackDeduper marks callback keys with SET NX. A key that already
// exists was handled by an earlier delivery.
type CallbackDeduper struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewCallbackDeduper(client redis.UniversalClient, prefix string, ttl time.Duration) *CallbackDeduper {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = DefaultPrefix
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &CallbackDeduper{
		client: client,
		prefix: trimmedPrefix,
		ttl:    ttl,
	}
}

func (d *CallbackDeduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	normalized := strings.TrimSpace(key)
	if normalized == "" {
		return false, errors.New("callback key is empty")
	}

	return d.client.SetNX(ctx, d.key(normalized), "1", d.ttl).Result()
}

func (d *CallbackDeduper) Forget(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.key(strings.TrimSpace(key))).Err()
}

func (d *CallbackDeduper) key(k string) string {
	return d.prefix + ":" + k
}
