package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/BullionBear/lobkeeper/internal/model"
)

// Store wraps a ClickHouse native connection, the idiomatic Go analog
// of the constructor-returns-wrapped-handle pattern domain/pgdb uses
// for its Postgres/gorm handle, adapted here to a columnar driver
// instead of an ORM.
type Store struct {
	conn driver.Conn
	db   string
}

// Open dials ClickHouse's native protocol against addr (host:port) and
// ensures the three tables exist.
func Open(ctx context.Context, addr, database string) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)); err != nil {
		return nil, fmt.Errorf("store: create database: %w", err)
	}
	if err := EnsureSchema(ctx, conn); err != nil {
		return nil, err
	}
	return &Store{conn: conn, db: database}, nil
}

// InsertSnapshot persists one row directly to the snapshot table, per
// C4's "enqueues it to the snapshot table directly (no batching)".
func (s *Store) InsertSnapshot(ctx context.Context, snap model.Snapshot) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO snapshot")
	if err != nil {
		return fmt.Errorf("store: prepare snapshot insert: %w", err)
	}
	if err := batch.Append(
		snap.Ts, snap.LastUpdateID,
		snap.BidsPrice, snap.BidsQuantity,
		snap.AsksPrice, snap.AsksQuantity,
		snap.Symbol,
	); err != nil {
		return fmt.Errorf("store: append snapshot: %w", err)
	}
	return batch.Send()
}

// InsertLog persists one row directly to the log table. It satisfies
// obslog.Sink.
func (s *Store) InsertLog(rec model.LogRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO log")
	if err != nil {
		return fmt.Errorf("store: prepare log insert: %w", err)
	}
	if err := batch.Append(rec.Ts, rec.Msg, uint8(rec.Level), rec.Payload); err != nil {
		return fmt.Errorf("store: append log: %w", err)
	}
	return batch.Send()
}

// InsertDiffBatch flushes a full batch of diff rows as one statement.
// Exposed for DiffWriter; not intended for direct per-row use.
func (s *Store) InsertDiffBatch(ctx context.Context, rows []model.Diff) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO diff")
	if err != nil {
		return fmt.Errorf("store: prepare diff batch: %w", err)
	}
	for _, d := range rows {
		if err := batch.Append(
			d.Ts, d.FirstUpdateID, d.FinalUpdateID,
			d.BidsPrice, d.BidsQuantity,
			d.AsksPrice, d.AsksQuantity,
			d.Symbol,
		); err != nil {
			return fmt.Errorf("store: append diff row: %w", err)
		}
	}
	return batch.Send()
}

// Conn exposes the underlying connection for raw query access. The
// replay package (C7/C8) does not use it; it reads through the query
// methods in reader.go.
func (s *Store) Conn() driver.Conn { return s.conn }

// Close releases the underlying connection.
func (s *Store) Close() error { return s.conn.Close() }
