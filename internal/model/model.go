// Package model defines the persisted row shapes shared by ingestion,
// storage, and replay.
package model

import "time"

// Snapshot is a self-contained full-depth picture of an order book at a
// single last_update_id. Snapshots never depend on prior state.
type Snapshot struct {
	Ts           time.Time
	LastUpdateID uint64
	BidsPrice    []float64
	BidsQuantity []float64
	AsksPrice    []float64
	AsksQuantity []float64
	Symbol       string
}

// Diff is an incremental order-book update spanning update IDs
// [FirstUpdateID, FinalUpdateID]. A price level carrying Quantity == 0
// encodes removal of that level.
type Diff struct {
	Ts            time.Time
	FirstUpdateID uint64
	FinalUpdateID uint64
	BidsPrice     []float64
	BidsQuantity  []float64
	AsksPrice     []float64
	AsksQuantity  []float64
	Symbol        string
}

// LoggingLevel mirrors Python's logging module numeric levels so that
// persisted log rows and console formatting agree with the upstream
// convention the rest of this system was distilled from.
type LoggingLevel uint8

const (
	LevelNotset   LoggingLevel = 0
	LevelDebug    LoggingLevel = 10
	LevelInfo     LoggingLevel = 20
	LevelWarning  LoggingLevel = 30
	LevelError    LoggingLevel = 40
	LevelCritical LoggingLevel = 50
)

func (l LoggingLevel) String() string {
	switch l {
	case LevelCritical:
		return "CRITICAL"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "NOTSET"
	}
}

// LogRecord is an append-only entry in the log table.
type LogRecord struct {
	Ts      time.Time
	Msg     string
	Level   LoggingLevel
	Payload string
}
