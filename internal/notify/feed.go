// Package notify records the notifications produced by availability
// mutations and fans them out to live subscribers.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"healthfirst/internal/domain"
)

const DefaultFeedSize = 50

// Feed keeps the most recent notifications of every provider, newest first.
type Feed interface {
	Push(ctx context.Context, n domain.Notification) error
	Recent(ctx context.Context, providerID int64, limit int) ([]domain.Notification, error)
}

type RedisFeed struct {
	client *redis.Client
	size   int64
}

func NewRedisFeed(client *redis.Client, size int) *RedisFeed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &RedisFeed{client: client, size: int64(size)}
}

func feedKey(providerID int64) string {
	return fmt.Sprintf("availability:notifications:%d", providerID)
}

func (f *RedisFeed) Push(ctx context.Context, n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: marshal notification: %w", err)
	}

	key := feedKey(n.ProviderID)
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, f.size-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("notify: push notification: %w", err)
	}
	return nil
}

func (f *RedisFeed) Recent(ctx context.Context, providerID int64, limit int) ([]domain.Notification, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := f.client.LRange(ctx, feedKey(providerID), 0, stop).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Notification{}, nil
		}
		return nil, fmt.Errorf("notify: list notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// MemoryFeed is used when no Redis address is configured.
type MemoryFeed struct {
	mu    sync.Mutex
	size  int
	items map[int64][]domain.Notification
}

func NewMemoryFeed(size int) *MemoryFeed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &MemoryFeed{size: size, items: make(map[int64][]domain.Notification)}
}

func (f *MemoryFeed) Push(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := append([]domain.Notification{n}, f.items[n.ProviderID]...)
	if len(items) > f.size {
		items = items[:f.size]
	}
	f.items[n.ProviderID] = items
	return nil
}

func (f *MemoryFeed) Recent(_ context.Context, providerID int64, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.items[providerID]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]domain.Notification, len(items))
	copy(out, items)
	return out, nil
}
