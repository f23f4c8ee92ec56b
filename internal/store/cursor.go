package store

import (
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// DiffRow is one scanned row of the diff table. Data-block discovery
// only reads Ts/FirstUpdateID/FinalUpdateID/Symbol; the replay engine
// also reads the price/quantity arrays.
type DiffRow struct {
	Ts            time.Time
	FirstUpdateID uint64
	FinalUpdateID uint64
	BidsPrice     []float64
	BidsQuantity  []float64
	AsksPrice     []float64
	AsksQuantity  []float64
	Symbol        string
}

// DiffCursor iterates diff rows one at a time. It abstracts over the
// ClickHouse driver's driver.Rows so replay and data-block discovery
// can be driven by a fake in unit tests, per this system's preference
// for hand-rolled fakes over a mocking framework.
type DiffCursor interface {
	Next() bool
	Scan() (DiffRow, error)
	Err() error
	Close() error
}

// chDiffCursor adapts a driver.Rows query over
// (ts, first_update_id, final_update_id, bids_price, bids_quantity,
// asks_price, asks_quantity, symbol) into a DiffCursor.
type chDiffCursor struct {
	rows driver.Rows
}

func (c *chDiffCursor) Next() bool { return c.rows.Next() }

func (c *chDiffCursor) Scan() (DiffRow, error) {
	var d DiffRow
	err := c.rows.Scan(
		&d.Ts, &d.FirstUpdateID, &d.FinalUpdateID,
		&d.BidsPrice, &d.BidsQuantity, &d.AsksPrice, &d.AsksQuantity,
		&d.Symbol,
	)
	if err != nil {
		return DiffRow{}, fmt.Errorf("store: scan diff row: %w", err)
	}
	return d, nil
}

func (c *chDiffCursor) Err() error   { return c.rows.Err() }
func (c *chDiffCursor) Close() error { return c.rows.Close() }

// chDiffIDCursor adapts a narrower query over
// (ts, first_update_id, final_update_id, symbol) — all
// DiffRowsAfter/data-block discovery needs — into a DiffCursor. The
// price/quantity fields are left nil.
type chDiffIDCursor struct {
	rows driver.Rows
}

func (c *chDiffIDCursor) Next() bool { return c.rows.Next() }

func (c *chDiffIDCursor) Scan() (DiffRow, error) {
	var d DiffRow
	if err := c.rows.Scan(&d.Ts, &d.FirstUpdateID, &d.FinalUpdateID, &d.Symbol); err != nil {
		return DiffRow{}, fmt.Errorf("store: scan diff id row: %w", err)
	}
	return d, nil
}

func (c *chDiffIDCursor) Err() error   { return c.rows.Err() }
func (c *chDiffIDCursor) Close() error { return c.rows.Close() }
