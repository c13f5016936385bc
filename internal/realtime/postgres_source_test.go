package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

type fakeListener struct {
	ch         chan *pq.Notification
	listened   string
	unlistened string
	closed     bool
}

func (f *fakeListener) Listen(channel string) error   { f.listened = channel; return nil }
func (f *fakeListener) Unlisten(channel string) error { f.unlistened = channel; return nil }
func (f *fakeListener) NotificationChannel() <-chan *pq.Notification {
	return f.ch
}
func (f *fakeListener) Ping() error  { return nil }
func (f *fakeListener) Close() error { f.closed = true; return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (p *recordingPublisher) Publish(ev models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) snapshot() []models.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ChangeEvent(nil), p.events...)
}

func TestDecodeNotification(t *testing.T) {
	ev, err := DecodeNotification(`{"table":"likes","type":"INSERT","record":{"course_id":"c-1","student_id":"s-1"},"old_record":null}`)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionLikes, ev.Collection)
	assert.Equal(t, models.ChangeInsert, ev.Type)
	assert.JSONEq(t, `{"course_id":"c-1","student_id":"s-1"}`, string(ev.Record))

	_, err = DecodeNotification(`{"type":"INSERT"}`)
	assert.Error(t, err)
	_, err = DecodeNotification(`not-json`)
	assert.Error(t, err)
}

func TestPostgresSourceRun(t *testing.T) {
	listener := &fakeListener{ch: make(chan *pq.Notification, 4)}
	pub := &recordingPublisher{}
	source := NewPostgresSource(listener, "catalog_changes", time.Hour, pub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- source.Run(ctx) }()

	listener.ch <- &pq.Notification{Channel: "catalog_changes", Extra: `{"table":"likes","type":"DELETE"}`}
	listener.ch <- &pq.Notification{Channel: "catalog_changes", Extra: `garbage`}
	listener.ch <- nil

	require.Eventually(t, func() bool { return len(pub.snapshot()) == 1+len(resyncCollections) }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	events := pub.snapshot()
	assert.Equal(t, models.ChangeDelete, events[0].Type)
	assert.False(t, events[0].ReceivedAt.IsZero())
	for _, ev := range events[1:] {
		assert.Equal(t, models.ChangeResync, ev.Type)
	}
	assert.Equal(t, "catalog_changes", listener.listened)
	assert.Equal(t, "catalog_changes", listener.unlistened)
	assert.True(t, listener.closed)
}
