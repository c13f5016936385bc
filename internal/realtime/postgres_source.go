package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/internal/models"
)

// Listener is the subset of *pq.Listener used by PostgresSource.
type Listener interface {
	Listen(channel string) error
	Unlisten(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

type publisher interface {
	Publish(ev models.ChangeEvent) error
}

// resyncCollections are announced after a reconnect, since notifications sent
// while disconnected are lost.
var resyncCollections = []string{
	models.CollectionLikes,
	models.CollectionCourses,
	models.CollectionEnrollments,
}

// PostgresSource turns LISTEN/NOTIFY payloads into hub events.
type PostgresSource struct {
	listener     Listener
	channel      string
	pingInterval time.Duration
	hub          publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewPostgresSource wires a listener to the hub.
func NewPostgresSource(listener Listener, channel string, pingInterval time.Duration, hub publisher, logger *zap.Logger) *PostgresSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pingInterval <= 0 {
		pingInterval = 90 * time.Second
	}
	return &PostgresSource{
		listener:     listener,
		channel:      channel,
		pingInterval: pingInterval,
		hub:          hub,
		logger:       logger,
		now:          time.Now,
	}
}

// Run listens until ctx is cancelled, then unlistens and closes the listener.
func (s *PostgresSource) Run(ctx context.Context) error {
	if err := s.listener.Listen(s.channel); err != nil {
		return fmt.Errorf("listen %s: %w", s.channel, err)
	}
	s.logger.Info("listening for changes", zap.String("channel", s.channel))

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	notifications := s.listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			if err := s.listener.Unlisten(s.channel); err != nil {
				s.logger.Debug("unlisten failed", zap.Error(err))
			}
			return s.listener.Close()
		case n, ok := <-notifications:
			if !ok {
				return fmt.Errorf("listener on %s closed", s.channel)
			}
			if n == nil {
				s.resync()
				continue
			}
			s.handle(n)
		case <-ticker.C:
			if err := s.listener.Ping(); err != nil {
				s.logger.Warn("change listener ping failed", zap.Error(err))
			}
		}
	}
}

func (s *PostgresSource) handle(n *pq.Notification) {
	ev, err := DecodeNotification(n.Extra)
	if err != nil {
		s.logger.Warn("dropping malformed change payload", zap.String("channel", n.Channel), zap.Error(err))
		return
	}
	ev.ReceivedAt = s.now().UTC()
	if err := s.hub.Publish(ev); err != nil {
		s.logger.Error("publish change event failed", zap.String("collection", ev.Collection), zap.Error(err))
	}
}

func (s *PostgresSource) resync() {
	s.logger.Info("change listener reconnected, requesting resync")
	for _, collection := range resyncCollections {
		ev := models.ChangeEvent{Collection: collection, Type: models.ChangeResync, ReceivedAt: s.now().UTC()}
		if err := s.hub.Publish(ev); err != nil {
			s.logger.Error("publish resync event failed", zap.String("collection", collection), zap.Error(err))
		}
	}
}

// DecodeNotification parses the JSON payload emitted by notify_catalog_change().
func DecodeNotification(payload string) (models.ChangeEvent, error) {
	var ev models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return models.ChangeEvent{}, fmt.Errorf("decode change payload: %w", err)
	}
	if ev.Collection == "" || ev.Type == "" {
		return models.ChangeEvent{}, fmt.Errorf("decode change payload: missing table or type")
	}
	return ev, nil
}
