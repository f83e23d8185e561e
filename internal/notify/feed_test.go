package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthfirst/internal/domain"
)

func note(providerID int64, title string) domain.Notification {
	return domain.Notification{
		ProviderID: providerID,
		Title:      title,
		Message:    title + " message",
		Severity:   domain.SeveritySuccess,
		CreatedAt:  time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestRedisFeedKeepsNewestFirst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	feed := NewRedisFeed(client, 3)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, feed.Push(ctx, note(7, fmt.Sprintf("n%d", i))))
	}
	require.NoError(t, feed.Push(ctx, note(8, "other")))

	items, err := feed.Recent(ctx, 7, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "n5", items[0].Title)
	assert.Equal(t, "n3", items[2].Title)

	items, err = feed.Recent(ctx, 7, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "n5", items[0].Title)

	length, err := client.LLen(ctx, "availability:notifications:7").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}

func TestRedisFeedEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	items, err := NewRedisFeed(client, 0).Recent(context.Background(), 42, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryFeed(t *testing.T) {
	feed := NewMemoryFeed(2)
	ctx := context.Background()
	require.NoError(t, feed.Push(ctx, note(1, "a")))
	require.NoError(t, feed.Push(ctx, note(1, "b")))
	require.NoError(t, feed.Push(ctx, note(1, "c")))

	items, err := feed.Recent(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].Title)
	assert.Equal(t, "b", items[1].Title)

	items, err = feed.Recent(ctx, 2, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

type recordingSink struct {
	got []domain.Notification
}

func (s *recordingSink) Send(n domain.Notification) {
	s.got = append(s.got, n)
}

type failingFeed struct{}

func (failingFeed) Push(context.Context, domain.Notification) error {
	return fmt.Errorf("redis down")
}

func (failingFeed) Recent(context.Context, int64, int) ([]domain.Notification, error) {
	return nil, fmt.Errorf("redis down")
}

func TestDispatcherFansOut(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(NewMemoryFeed(10), zap.NewNop(), sink)

	d.Publish(context.Background(), note(3, "Slot Added"))

	assert.Len(t, sink.got, 1)
	items, err := d.Recent(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDispatcherSurvivesFeedFailure(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(failingFeed{}, zap.NewNop(), sink)

	d.Publish(context.Background(), note(3, "Slot Added"))
	assert.Len(t, sink.got, 1)

	var nilDispatcher *Dispatcher
	nilDispatcher.Publish(context.Background(), note(3, "ignored"))
	items, err := nilDispatcher.Recent(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
