package notify

import (
	"context"

	"go.uber.org/zap"

	"healthfirst/internal/domain"
)

// Sink receives notifications as they are published, for example a
// websocket hub pushing them to a connected provider.
type Sink interface {
	Send(n domain.Notification)
}

type Dispatcher struct {
	feed   Feed
	sinks  []Sink
	logger *zap.Logger
}

func NewDispatcher(feed Feed, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{feed: feed, sinks: sinks, logger: logger}
}

// Publish never fails the caller: a notification that cannot be recorded is
// logged and still handed to the live sinks.
func (d *Dispatcher) Publish(ctx context.Context, n domain.Notification) {
	if d == nil {
		return
	}
	if d.feed != nil {
		if err := d.feed.Push(ctx, n); err != nil {
			d.logger.Warn("failed to record notification",
				zap.Int64("provider_id", n.ProviderID),
				zap.String("title", n.Title),
				zap.Error(err))
		}
	}
	for _, sink := range d.sinks {
		sink.Send(n)
	}
}

func (d *Dispatcher) Recent(ctx context.Context, providerID int64, limit int) ([]domain.Notification, error) {
	if d == nil || d.feed == nil {
		return []domain.Notification{}, nil
	}
	return d.feed.Recent(ctx, providerID, limit)
}
