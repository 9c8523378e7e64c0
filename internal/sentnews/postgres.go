package sentnews

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sent_news (
	news_id    TEXT        NOT NULL,
	channel_id TEXT        NOT NULL,
	symbol     TEXT        NOT NULL,
	sent_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (news_id, channel_id)
);
CREATE INDEX IF NOT EXISTS sent_news_sent_at_idx ON sent_news (sent_at);
`

// pgxConn is the subset of *pgxpool.Pool used by PostgresStore.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore keeps records in the sent_news table.
type PostgresStore struct {
	db  pgxConn
	now Clock
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps a pool. A nil clock uses time.Now.
func NewPostgresStore(db pgxConn, now Clock) *PostgresStore {
	if now == nil {
		now = time.Now
	}
	return &PostgresStore{db: db, now: now}
}

func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create sent_news schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) WasSent(ctx context.Context, newsID, channelID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sent_news WHERE news_id = $1 AND channel_id = $2)
	`, newsID, channelID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sent news %s/%s: %w", newsID, channelID, err)
	}
	return exists, nil
}

// RecordSent relies on the primary key: a conflicting insert affects no rows.
func (s *PostgresStore) RecordSent(ctx context.Context, newsID, symbol, channelID string) (Outcome, error) {
	if err := validateKey(newsID, channelID); err != nil {
		return Duplicate, err
	}

	ct, err := s.db.Exec(ctx, `
		INSERT INTO sent_news (news_id, channel_id, symbol, sent_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (news_id, channel_id) DO NOTHING
	`, newsID, channelID, symbol, s.now().UTC())
	if err != nil {
		return Duplicate, fmt.Errorf("record sent news %s/%s: %w", newsID, channelID, err)
	}

	if ct.RowsAffected() == 0 {
		return Duplicate, nil
	}
	return Recorded, nil
}

func (s *PostgresStore) EvictOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention).UTC()

	ct, err := s.db.Exec(ctx, `DELETE FROM sent_news WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("evict sent news: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
