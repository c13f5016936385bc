package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/models"
	"github.com/noah-isme/course-catalog-api/pkg/jobs"
)

// Callback receives a matching change event. Callbacks run on the hub's
// dispatch worker and must hand long work off to their own goroutine.
type Callback func(models.ChangeEvent)

type eventRecorder interface {
	RecordChangeEvent(collection, changeType string)
}

// HubConfig configures the dispatcher behind the hub.
type HubConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
	Metrics    eventRecorder
}

// Hub fans change events out to subscriptions keyed by collection and change type.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*Subscription
	queue   *jobs.Queue
	logger  *zap.Logger
	metrics eventRecorder
}

// Subscription is a live registration on the hub, held until Release.
type Subscription struct {
	id         string
	collection string
	changeType models.ChangeType
	callback   Callback
	hub        *Hub
	released   atomic.Bool
}

// NewHub constructs a hub. Start must be called before events are published.
func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		subs:    make(map[string]*Subscription),
		logger:  logger,
		metrics: cfg.Metrics,
	}
	h.queue = jobs.NewQueue("realtime-dispatch", h.dispatch, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return h
}

// Start launches the dispatch workers.
func (h *Hub) Start(ctx context.Context) {
	h.queue.Start(ctx)
}

// Stop halts dispatch; subscriptions remain registered but receive nothing further.
func (h *Hub) Stop() {
	h.queue.Stop()
}

// Subscribe registers cb for events on collection with the given type;
// models.ChangeAny matches every type.
func (h *Hub) Subscribe(collection string, changeType models.ChangeType, cb Callback) *Subscription {
	if changeType == "" {
		changeType = models.ChangeAny
	}
	sub := &Subscription{
		id:         uuid.NewString(),
		collection: collection,
		changeType: changeType,
		callback:   cb,
		hub:        h,
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	h.logger.Debug("subscription added", zap.String("subscription_id", sub.id), zap.String("collection", collection), zap.String("type", string(changeType)))
	return sub
}

// Publish queues the event for delivery to every matching subscription.
func (h *Hub) Publish(ev models.ChangeEvent) error {
	if h.metrics != nil {
		h.metrics.RecordChangeEvent(ev.Collection, string(ev.Type))
	}
	return h.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: ev.Collection, Payload: ev})
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) dispatch(_ context.Context, job jobs.Job) error {
	ev, ok := job.Payload.(models.ChangeEvent)
	if !ok {
		return nil
	}

	h.mu.RLock()
	matched := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		if ev.Matches(sub.collection, sub.changeType) {
			matched = append(matched, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range matched {
		if sub.released.Load() {
			continue
		}
		sub.callback(ev)
	}
	return nil
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
	h.logger.Debug("subscription released", zap.String("subscription_id", id))
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Release unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Release() {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return
	}
	s.hub.remove(s.id)
}
