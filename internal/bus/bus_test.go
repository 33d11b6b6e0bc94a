package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

// loopbackQueue hands every published message to all consumers of the exchange.
type loopbackQueue struct {
	mu        sync.Mutex
	consumers map[string][]func([]byte)
	published [][]byte
	fail      bool
}

func newLoopbackQueue() *loopbackQueue {
	return &loopbackQueue{consumers: make(map[string][]func([]byte))}
}

func (q *loopbackQueue) Publish(_ context.Context, exchange string, body []byte) error {
	q.mu.Lock()
	if q.fail {
		q.mu.Unlock()
		return errors.New("connection closed")
	}
	q.published = append(q.published, body)
	consumers := append([]func([]byte){}, q.consumers[exchange]...)
	q.mu.Unlock()
	for _, c := range consumers {
		c(body)
	}
	return nil
}

func (q *loopbackQueue) Consume(ctx context.Context, exchange string, handler func([]byte)) error {
	q.mu.Lock()
	q.consumers[exchange] = append(q.consumers[exchange], handler)
	q.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (q *loopbackQueue) Close() error { return nil }

type recordingHandler struct {
	mu      sync.Mutex
	refresh int
	evicted []string
	cleared []string
}

func (h *recordingHandler) OnRefresh(context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refresh++
}

func (h *recordingHandler) OnEvict(_ context.Context, cacheName, key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evicted = append(h.evicted, cacheName+"/"+key)
}

func (h *recordingHandler) OnClear(_ context.Context, cacheName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleared = append(h.cleared, cacheName)
}

func TestBusDeliversToOtherInstances(t *testing.T) {
	q := newLoopbackQueue()
	sender := New(q, "springCloudBus", nil)
	receiver := New(q, "springCloudBus", nil)
	if sender.Origin() == receiver.Origin() {
		t.Fatal("instances must have distinct origins")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	senderSeen := &recordingHandler{}
	receiverSeen := &recordingHandler{}
	go func() { _ = sender.Listen(ctx, senderSeen) }()
	go func() { _ = receiver.Listen(ctx, receiverSeen) }()
	waitForConsumers(t, q, 2)

	if err := sender.PublishRefresh(ctx); err != nil {
		t.Fatalf("PublishRefresh failed: %v", err)
	}
	if err := sender.PublishEvict(ctx, "BasicDataCache", "core.UserService:SelectByPrimaryKey:1,"); err != nil {
		t.Fatalf("PublishEvict failed: %v", err)
	}
	if err := sender.PublishClear(ctx, "SsoCache"); err != nil {
		t.Fatalf("PublishClear failed: %v", err)
	}

	if receiverSeen.refresh != 1 {
		t.Errorf("receiver refresh count = %d", receiverSeen.refresh)
	}
	if len(receiverSeen.evicted) != 1 || receiverSeen.evicted[0] != "BasicDataCache/core.UserService:SelectByPrimaryKey:1," {
		t.Errorf("receiver evicted = %v", receiverSeen.evicted)
	}
	if len(receiverSeen.cleared) != 1 || receiverSeen.cleared[0] != "SsoCache" {
		t.Errorf("receiver cleared = %v", receiverSeen.cleared)
	}
	if senderSeen.refresh != 0 || len(senderSeen.evicted) != 0 || len(senderSeen.cleared) != 0 {
		t.Errorf("sender applied its own events: %+v", senderSeen)
	}
}

func waitForConsumers(t *testing.T, q *loopbackQueue, n int) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		q.mu.Lock()
		got := len(q.consumers["springCloudBus"])
		q.mu.Unlock()
		if got == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("consumers never registered")
}

func TestBusEventEncoding(t *testing.T) {
	q := newLoopbackQueue()
	b := New(q, "x", nil)
	if err := b.PublishEvict(context.Background(), "A", "k"); err != nil {
		t.Fatalf("PublishEvict failed: %v", err)
	}
	var e Event
	if err := json.Unmarshal(q.published[0], &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Type != EventEvict || e.Cache != "A" || e.Key != "k" || e.Origin != b.Origin() {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestBusDropsMalformedAndUnknownEvents(t *testing.T) {
	b := New(newLoopbackQueue(), "x", nil)
	h := &recordingHandler{}

	b.dispatch(context.Background(), h, []byte("{not json"))
	b.dispatch(context.Background(), h, []byte(`{"type":"restart","origin":"other"}`))

	if h.refresh != 0 || len(h.evicted) != 0 || len(h.cleared) != 0 {
		t.Fatalf("handler should not be called: %+v", h)
	}
}

func TestBusPublishError(t *testing.T) {
	q := newLoopbackQueue()
	q.fail = true
	b := New(q, "x", nil)
	if err := b.PublishRefresh(context.Background()); err == nil {
		t.Fatal("expected publish error")
	}
}
