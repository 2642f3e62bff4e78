package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	"StableLottery/internal/model"
)

// SQLiteRecorder persists event history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log *slog.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *slog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			event_type  TEXT NOT NULL,
			lottery_id  INTEGER,
			actor       TEXT,
			amount      INTEGER,
			numbers     TEXT,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_lottery ON events(lottery_id)`,

		`CREATE TABLE IF NOT EXISTS draws (
			lottery_id  INTEGER PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			numbers     TEXT NOT NULL,
			seed        TEXT NOT NULL,
			pool        INTEGER
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordEvent(evt *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO events
		(id, timestamp, event_type, lottery_id, actor, amount, numbers, note)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.ID, evt.Timestamp, string(evt.Type), evt.LotteryID,
		evt.Actor, evt.Amount, evt.Numbers, evt.Note,
	)
	if err != nil {
		return err
	}

	if evt.Type == model.EventDrawExecuted {
		_, err = tx.Exec(`INSERT OR REPLACE INTO draws
			(lottery_id, timestamp, numbers, seed, pool)
			VALUES (?,?,?,?,?)`,
			evt.LotteryID, evt.Timestamp, evt.Numbers, evt.Seed, evt.Amount,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListEvents returns the newest events first. A zero lotteryID lists all.
func (r *SQLiteRecorder) ListEvents(lotteryID uint64, limit int) ([]model.Event, error) {
	query := `SELECT id, timestamp, event_type, lottery_id, actor, amount, numbers, note
		FROM events`
	var args []any
	if lotteryID != 0 {
		query += ` WHERE lottery_id = ?`
		args = append(args, lotteryID)
	}
	query += ` ORDER BY timestamp DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var (
			e   model.Event
			typ string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &typ, &e.LotteryID, &e.Actor, &e.Amount, &e.Numbers, &e.Note); err != nil {
			return nil, err
		}
		e.Type = model.EventType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) RecentDraws(limit int) ([]DrawRecord, error) {
	rows, err := r.db.Query(`SELECT lottery_id, timestamp, numbers, seed, pool
		FROM draws ORDER BY timestamp DESC, lottery_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DrawRecord
	for rows.Next() {
		var d DrawRecord
		if err := rows.Scan(&d.LotteryID, &d.Timestamp, &d.Numbers, &d.Seed, &d.Pool); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
