// Package bus broadcasts configuration refreshes and cache invalidations to every running
// instance of a service over a fanout exchange.
package bus

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bluesky/zoom/pkg/messagequeue"
)

type EventType string

const (
	EventRefresh EventType = "refresh"
	EventEvict   EventType = "evict"
	EventClear   EventType = "clear"
)

type Event struct {
	Type   EventType `json:"type"`
	Cache  string    `json:"cache,omitempty"`
	Key    string    `json:"key,omitempty"`
	Origin string    `json:"origin"`
}

// Handler applies events received from other instances.
type Handler interface {
	OnRefresh(ctx context.Context)
	OnEvict(ctx context.Context, cacheName, key string)
	OnClear(ctx context.Context, cacheName string)
}

// Bus publishes events tagged with this instance's origin and ignores its own events on
// receipt; the publisher has already applied them locally.
type Bus struct {
	mq       messagequeue.MessageQueue
	exchange string
	origin   string
	logger   *zap.Logger
}

func New(mq messagequeue.MessageQueue, exchange string, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{mq: mq, exchange: exchange, origin: uuid.NewString(), logger: logger}
}

// Origin identifies this instance in published events.
func (b *Bus) Origin() string { return b.origin }

func (b *Bus) PublishRefresh(ctx context.Context) error {
	return b.publish(ctx, Event{Type: EventRefresh})
}

func (b *Bus) PublishEvict(ctx context.Context, cacheName, key string) error {
	return b.publish(ctx, Event{Type: EventEvict, Cache: cacheName, Key: key})
}

func (b *Bus) PublishClear(ctx context.Context, cacheName string) error {
	return b.publish(ctx, Event{Type: EventClear, Cache: cacheName})
}

func (b *Bus) publish(ctx context.Context, e Event) error {
	e.Origin = b.origin
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode bus event: %w", err)
	}
	if err := b.mq.Publish(ctx, b.exchange, body); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

// Listen dispatches events to h until ctx is done.
func (b *Bus) Listen(ctx context.Context, h Handler) error {
	return b.mq.Consume(ctx, b.exchange, func(body []byte) {
		b.dispatch(ctx, h, body)
	})
}

func (b *Bus) dispatch(ctx context.Context, h Handler, body []byte) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		b.logger.Warn("Dropping malformed bus event", zap.Error(err), zap.ByteString("body", body))
		return
	}
	if e.Origin == b.origin {
		return
	}
	b.logger.Info("Bus event received",
		zap.String("type", string(e.Type)), zap.String("origin", e.Origin),
		zap.String("cache", e.Cache), zap.String("key", e.Key))

	switch e.Type {
	case EventRefresh:
		h.OnRefresh(ctx)
	case EventEvict:
		h.OnEvict(ctx, e.Cache, e.Key)
	case EventClear:
		h.OnClear(ctx, e.Cache)
	default:
		b.logger.Warn("Unknown bus event type", zap.String("type", string(e.Type)))
	}
}
