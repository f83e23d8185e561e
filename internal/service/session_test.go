package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"healthfirst/internal/domain"
)

func TestSessionManagerDefaults(t *testing.T) {
	manager, err := NewSessionManager(4, 4, nil, func() time.Time { return fixedNow }, nil, zap.NewNop())
	require.NoError(t, err)

	session, err := manager.Get(context.Background(), providerID)
	require.NoError(t, err)

	view, date := session.Position()
	assert.Equal(t, domain.ViewWeek, view)
	assert.Equal(t, "2024-01-15", date.Format(domain.DateLayout))

	same, err := manager.Get(context.Background(), providerID)
	require.NoError(t, err)
	assert.Same(t, session, same)
	assert.Equal(t, 1, manager.Len())
}

func TestSessionManagerRehydratesEvictedSession(t *testing.T) {
	repo := newStubSlotRepo()
	require.NoError(t, repo.Save(context.Background(), 1, domain.Slot{
		ID:       "2024-01-16-09:00",
		Date:     "2024-01-16",
		Time:     "09:00",
		Duration: 30,
		Status:   domain.SlotStatusBooked,
	}))

	manager, err := NewSessionManager(1, 4, repo, nil, nil, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := manager.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Store.Len())

	_, err = manager.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, manager.Len())

	reopened, err := manager.Get(ctx, 1)
	require.NoError(t, err)
	assert.NotSame(t, first, reopened)

	slot, ok := reopened.Store.FindByKey("2024-01-16", "09:00")
	require.True(t, ok)
	assert.Equal(t, domain.SlotStatusBooked, slot.Status)
}

func TestSessionManagerWarnsWhenMemorySlotsAreEvicted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	manager, err := NewSessionManager(1, 4, nil, nil, nil, zap.New(core))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := manager.Get(ctx, 1)
	require.NoError(t, err)
	_, err = first.Store.Insert(domain.Slot{Date: "2024-01-16", Time: "09:00", Duration: 30, Status: domain.SlotStatusAvailable})
	require.NoError(t, err)

	_, err = manager.Get(ctx, 2)
	require.NoError(t, err)

	evicted := logs.FilterMessage("provider session evicted, in-memory slots discarded").All()
	require.Len(t, evicted, 1)
	assert.Equal(t, zapcore.WarnLevel, evicted[0].Level)
	assert.Equal(t, int64(1), evicted[0].ContextMap()["provider_id"])
	assert.Equal(t, int64(1), evicted[0].ContextMap()["slots"])

	reopened, err := manager.Get(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, reopened.Store.Len())
}

func TestSessionManagerEvictionWithRepoIsInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	manager, err := NewSessionManager(1, 4, newStubSlotRepo(), nil, nil, zap.New(core))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = manager.Get(ctx, 1)
	require.NoError(t, err)
	_, err = manager.Get(ctx, 2)
	require.NoError(t, err)

	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("provider session evicted").Len())
}

func TestSessionTemplatesAreOrdered(t *testing.T) {
	manager, err := NewSessionManager(4, 4, nil, nil, nil, zap.NewNop())
	require.NoError(t, err)
	session, err := manager.Get(context.Background(), providerID)
	require.NoError(t, err)

	session.AddTemplate(domain.AvailabilityTemplate{ID: "b", CreatedAt: fixedNow.Add(time.Minute)})
	session.AddTemplate(domain.AvailabilityTemplate{ID: "a", CreatedAt: fixedNow})

	templates := session.Templates()
	require.Len(t, templates, 2)
	assert.Equal(t, "a", templates[0].ID)

	assert.True(t, session.RemoveTemplate("a"))
	assert.False(t, session.RemoveTemplate("a"))
}
