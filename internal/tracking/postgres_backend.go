package tracking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// PostgresBackend stores one row per record with an upsert on the tracking
// id, giving per-record atomicity instead of snapshot overwrite.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend wraps an open database handle. Call EnsureSchema
// before first use.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the backing table if it does not exist.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS engagement_emails (
			id      TEXT PRIMARY KEY,
			sent_at TIMESTAMPTZ NOT NULL,
			record  JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Load(ctx context.Context) ([]*EmailRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT record FROM engagement_emails ORDER BY sent_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres load: %w", err)
	}
	defer rows.Close()

	var recs []*EmailRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec EmailRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("postgres record: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (p *PostgresBackend) Put(ctx context.Context, rec *EmailRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO engagement_emails (id, sent_at, record)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record`,
		rec.ID, rec.Timestamp, raw)
	if err != nil {
		return fmt.Errorf("postgres put %s: %w", rec.ID, err)
	}
	return nil
}

func (p *PostgresBackend) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM engagement_emails WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Replace(ctx context.Context, recs []*EmailRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM engagement_emails`); err != nil {
		return fmt.Errorf("postgres replace clear: %w", err)
	}
	for _, rec := range recs {
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO engagement_emails (id, sent_at, record) VALUES ($1, $2, $3)`,
			rec.ID, rec.Timestamp, raw); err != nil {
			return fmt.Errorf("postgres replace insert %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}
