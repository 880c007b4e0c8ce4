package raffle

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the per-record transactional backend. Each prize and
// history entry is one row; bulk saves run the clear-and-reinsert sequence
// inside a single transaction so a failure mid-write never leaves a partial
// pool visible to the next load.
type SQLiteStore struct {
	db     *sql.DB
	logger Logger
}

// NewSQLiteStore opens or creates the database at dbPath. An empty dbPath
// defaults to $TMPDIR/raffle/raffle.db.
func NewSQLiteStore(dbPath string, logger Logger) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "raffle", "raffle.db")
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prizes (
			id               TEXT PRIMARY KEY,
			position         INTEGER NOT NULL,
			name             TEXT NOT NULL,
			display_text     TEXT NOT NULL DEFAULT '',
			probability      REAL NOT NULL,
			quantity         INTEGER NOT NULL,
			image            TEXT NOT NULL DEFAULT '',
			display_mode     TEXT NOT NULL DEFAULT 'name',
			text_color       TEXT NOT NULL DEFAULT '',
			background_color TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			position         INTEGER NOT NULL,
			separator        INTEGER NOT NULL DEFAULT 0,
			prize_name       TEXT NOT NULL DEFAULT '',
			display_text     TEXT NOT NULL DEFAULT '',
			actor            TEXT NOT NULL DEFAULT '',
			probability      REAL NOT NULL DEFAULT 0,
			text_color       TEXT NOT NULL DEFAULT '',
			background_color TEXT NOT NULL DEFAULT '',
			drawn_at         INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prizes_position ON prizes(position)`,
		`CREATE INDEX IF NOT EXISTS idx_history_position ON history(position)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadPool returns every persisted prize in its saved order.
func (s *SQLiteStore) LoadPool(ctx context.Context) ([]Prize, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, display_text, probability, quantity, image,
		       display_mode, text_color, background_color
		FROM prizes ORDER BY position`)
	if err != nil {
		return nil, newStoreReadError("load_pool", err)
	}
	defer rows.Close()

	prizes := []Prize{}
	for rows.Next() {
		var p Prize
		var mode string
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayText, &p.Probability, &p.Quantity,
			&p.Image, &mode, &p.Style.TextColor, &p.Style.BackgroundColor); err != nil {
			return nil, newStoreReadError("load_pool", err)
		}
		p.DisplayMode = DisplayMode(mode).orDefault()
		prizes = append(prizes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreReadError("load_pool", err)
	}
	return prizes, nil
}

// SavePool replaces the persisted pool in one transaction. Insertion order is
// recorded in the position column so it survives the round-trip.
func (s *SQLiteStore) SavePool(ctx context.Context, prizes []Prize) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStoreWriteError("save_pool", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM prizes`); err != nil {
		return newStoreWriteError("save_pool", err)
	}
	for i, p := range prizes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prizes
				(id, position, name, display_text, probability, quantity, image,
				 display_mode, text_color, background_color)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			p.ID, i, p.Name, p.DisplayText, p.Probability, p.Quantity, p.Image,
			string(p.DisplayMode.orDefault()), p.Style.TextColor, p.Style.BackgroundColor,
		)
		if err != nil {
			return newStoreWriteError("save_pool", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return newStoreWriteError("save_pool", err)
	}
	s.logger.Debug("Saved %d prizes", len(prizes))
	return nil
}

// LoadHistory returns the persisted ledger in its saved order.
func (s *SQLiteStore) LoadHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT separator, prize_name, display_text, actor, probability,
		       text_color, background_color, drawn_at
		FROM history ORDER BY position`)
	if err != nil {
		return nil, newStoreReadError("load_history", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var separator int
		var drawnAtNano int64
		if err := rows.Scan(&separator, &e.PrizeName, &e.DisplayText, &e.Actor,
			&e.Probability, &e.Style.TextColor, &e.Style.BackgroundColor, &drawnAtNano); err != nil {
			return nil, newStoreReadError("load_history", err)
		}
		e.Separator = separator != 0
		if drawnAtNano != 0 {
			e.DrawnAt = time.Unix(0, drawnAtNano)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreReadError("load_history", err)
	}
	return entries, nil
}

// SaveHistory replaces the persisted ledger in one transaction.
func (s *SQLiteStore) SaveHistory(ctx context.Context, entries []HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStoreWriteError("save_history", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return newStoreWriteError("save_history", err)
	}
	for i, e := range entries {
		var drawnAtNano int64
		if !e.DrawnAt.IsZero() {
			drawnAtNano = e.DrawnAt.UnixNano()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO history
				(position, separator, prize_name, display_text, actor, probability,
				 text_color, background_color, drawn_at)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			i, boolToInt(e.Separator), e.PrizeName, e.DisplayText, e.Actor, e.Probability,
			e.Style.TextColor, e.Style.BackgroundColor, drawnAtNano,
		)
		if err != nil {
			return newStoreWriteError("save_history", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return newStoreWriteError("save_history", err)
	}
	return nil
}

// ClearHistory removes every ledger row.
func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return newStoreWriteError("clear_history", err)
	}
	return nil
}

// LoadSetting returns the stored value for key, or def when absent.
func (s *SQLiteStore) LoadSetting(ctx context.Context, key, def string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return def, newStoreReadError("load_setting", err)
	}
	return value, nil
}

// SaveSetting stores a loose setting value.
func (s *SQLiteStore) SaveSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return newStoreWriteError("save_setting", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
