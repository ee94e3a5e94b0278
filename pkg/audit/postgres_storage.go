package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// PostgresBatcher is the subset of pgxpool.Pool used by PostgresStorage.
type PostgresBatcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const insertEventSQL = `
INSERT INTO audit_events (id, account_id, action, ip, user_agent, success, reason, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// PostgresStorage appends events to an audit_events table via pgx. The table
// is insert-only; nothing in this package updates or deletes rows.
//
// Expected schema:
//
//	CREATE TABLE audit_events (
//	    id         UUID PRIMARY KEY,
//	    account_id UUID,
//	    action     TEXT NOT NULL,
//	    ip         TEXT,
//	    user_agent TEXT,
//	    success    BOOLEAN NOT NULL,
//	    reason     TEXT,
//	    metadata   JSONB,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStorage struct {
	db PostgresBatcher
}

// NewPostgresStorage creates storage backed by a pgx pool.
func NewPostgresStorage(db PostgresBatcher) *PostgresStorage {
	if db == nil {
		panic("audit: db cannot be nil")
	}
	return &PostgresStorage{db: db}
}

// Store inserts all events in a single round trip.
func (p *PostgresStorage) Store(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		var metadata []byte
		if len(e.Metadata) > 0 {
			var err error
			if metadata, err = json.Marshal(e.Metadata); err != nil {
				return err
			}
		}
		batch.Queue(insertEventSQL,
			e.ID, e.AccountID, string(e.Action), e.IP, e.UserAgent,
			e.Success, e.Reason, metadata, e.CreatedAt,
		)
	}

	results := p.db.SendBatch(ctx, batch)
	for range events {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}
