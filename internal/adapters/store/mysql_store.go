package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the InboxStore interface with
// the same JSON-document layout as the SQLite store.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.Mutex
	hub    *hub
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL inbox store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open MySQL connection: %v", core.ErrStorageUnavailable, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping MySQL: %v", core.ErrStorageUnavailable, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS inbox_messages (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			payload JSON NOT NULL,
			received_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create table: %v", core.ErrStorageUnavailable, err)
	}

	return &MySQLStore{
		db:     db,
		hub:    newHub(),
		logger: logger,
	}, nil
}

// Append inserts the record and notifies subscribers with the assigned
// key. A backing-store failure is pushed to live subscribers as an error
// event as well as returned to the writer.
func (s *MySQLStore) Append(ctx context.Context, msg *core.InboundMessage) (string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to encode inbox record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO inbox_messages (payload, received_at) VALUES (?, ?)
	`, string(payload), time.Now().UTC())
	if err != nil {
		appendErr := fmt.Errorf("%w: append failed: %v", core.ErrStorageUnavailable, err)
		s.hub.publish(core.InboxEvent{Err: appendErr})
		return "", appendErr
	}

	id, err := res.LastInsertId()
	if err != nil {
		appendErr := fmt.Errorf("%w: no insert id: %v", core.ErrStorageUnavailable, err)
		s.hub.publish(core.InboxEvent{Err: appendErr})
		return "", appendErr
	}

	stored := core.StoredMessage{Key: fmt.Sprintf("%012d", id), Message: *msg}
	s.hub.publish(core.InboxEvent{Appended: &stored})

	s.logger.Debug("Appended inbox record", zap.String("storage_key", stored.Key))
	return stored.Key, nil
}

// ListAll reads the full inbox in insertion order.
func (s *MySQLStore) ListAll(ctx context.Context) ([]core.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload FROM inbox_messages ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: read failed: %v", core.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	snapshot := []core.StoredMessage{}
	for rows.Next() {
		var id int64
		var payload sql.RawBytes
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("%w: scan failed: %v", core.ErrStorageUnavailable, err)
		}

		var msg core.InboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Error("Skipping undecodable inbox record",
				zap.Int64("id", id), zap.Error(err))
			continue
		}
		snapshot = append(snapshot, core.StoredMessage{Key: fmt.Sprintf("%012d", id), Message: msg})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read failed: %v", core.ErrStorageUnavailable, err)
	}
	return snapshot, nil
}

// Subscribe reads the current snapshot and registers a live subscriber.
func (s *MySQLStore) Subscribe(fn core.SubscriberFunc) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.ListAll(context.Background())
	if err != nil {
		return nil, err
	}
	return s.hub.subscribe(fn, snapshot), nil
}

// Close closes the underlying database.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
