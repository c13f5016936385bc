package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/course-catalog-api/pkg/config"
)

// DSN renders the libpq connection string for the configured database.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewListener opens a dedicated LISTEN connection used for change notifications.
// Connection state transitions are logged; pq reconnects on its own between the intervals.
func NewListener(dbCfg config.DatabaseConfig, rtCfg config.RealtimeConfig, logger *zap.Logger) *pq.Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	report := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("change listener connected", zap.String("channel", rtCfg.Channel))
		case pq.ListenerEventDisconnected:
			logger.Warn("change listener disconnected", zap.String("channel", rtCfg.Channel), zap.Error(err))
		case pq.ListenerEventReconnected:
			logger.Info("change listener reconnected", zap.String("channel", rtCfg.Channel))
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("change listener connect attempt failed", zap.String("channel", rtCfg.Channel), zap.Error(err))
		}
	}
	return pq.NewListener(DSN(dbCfg), rtCfg.MinReconnect, rtCfg.MaxReconnect, report)
}
