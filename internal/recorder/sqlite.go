package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists signal history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so ad-hoc reads don't block the bot's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			trigger_type   TEXT,
			price          REAL,
			change_24h     REAL,
			rsi            REAL,
			ema20          REAL,
			ema50          REAL,
			trend          TEXT,
			macd           REAL,
			macd_histogram REAL,
			volume_spike   REAL,
			funding_rate   REAL,
			long_short     REAL,
			poc            REAL,
			signal         TEXT NOT NULL,
			target_pct     REAL,
			stop_pct       REAL,
			confidence     INTEGER,
			reason         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(evt *SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sig := evt.Signal

	var price, change, rsi, ema20, ema50, macd, hist, spike, funding, longShort, poc float64
	var trend string
	if snap := evt.Snapshot; snap != nil {
		price = snap.Price
		change = snap.Change24h
		rsi = snap.RSI
		ema20 = snap.EMA20
		ema50 = snap.EMA50
		trend = string(snap.Trend)
		macd = snap.MACD
		hist = snap.MACDHistogram
		spike = snap.VolumeSpike
		funding = snap.FundingRate
		longShort = snap.LongShort
		poc = snap.POC
	}

	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, symbol, trigger_type, price, change_24h, rsi, ema20, ema50, trend,
		 macd, macd_histogram, volume_spike, funding_rate, long_short, poc,
		 signal, target_pct, stop_pct, confidence, reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), sig.Symbol, string(evt.Trigger),
		price, change, rsi, ema20, ema50, trend,
		macd, hist, spike, funding, longShort, poc,
		string(sig.Signal), sig.TargetPct, sig.StopPct, sig.Confidence, sig.Reason,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
