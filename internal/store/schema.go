// Package store is the columnar persistence layer (C1/C2): three
// append-only ClickHouse tables plus a batching writer. The table
// engines and codecs mirror the ClickHouse ORM models this system was
// distilled from (original_source/model.py): DateTime64 columns carry
// a Delta,ZSTD codec, the log level carries Delta,LZ4.
package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const snapshotDDL = `
CREATE TABLE IF NOT EXISTS snapshot (
	ts            DateTime64(3) CODEC(Delta, ZSTD),
	last_update_id UInt64,
	bids_price    Array(Float64),
	bids_quantity Array(Float64),
	asks_price    Array(Float64),
	asks_quantity Array(Float64),
	symbol        LowCardinality(String)
) ENGINE = MergeTree
PARTITION BY symbol
ORDER BY (ts, last_update_id)
`

const diffDDL = `
CREATE TABLE IF NOT EXISTS diff (
	ts              DateTime64(3) CODEC(Delta, ZSTD),
	first_update_id UInt64 CODEC(Delta, ZSTD),
	final_update_id UInt64 CODEC(Delta, ZSTD),
	bids_price      Array(Float64),
	bids_quantity   Array(Float64),
	asks_price      Array(Float64),
	asks_quantity   Array(Float64),
	symbol          LowCardinality(String)
) ENGINE = ReplacingMergeTree
PARTITION BY (toMonday(ts), symbol)
ORDER BY (ts, first_update_id, final_update_id)
`

const logDDL = `
CREATE TABLE IF NOT EXISTS log (
	ts      DateTime64(3) CODEC(Delta, ZSTD),
	msg     String,
	level   UInt8 CODEC(Delta, LZ4),
	payload String DEFAULT ''
) ENGINE = MergeTree
ORDER BY ts
`

// EnsureSchema creates the three tables if absent, matching the
// original __main__ block's db.create_table loop.
func EnsureSchema(ctx context.Context, conn driver.Conn) error {
	for _, ddl := range []string{snapshotDDL, diffDDL, logDDL} {
		if err := conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}
