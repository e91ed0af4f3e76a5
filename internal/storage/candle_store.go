package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/vedant-shah/pair/internal/domain"
)

// CandleStore persists candle history and exchange metadata in SQLite.
// Fetched candle windows are written through on every load, so a bulk load
// can be served locally when the candle service is unreachable.
type CandleStore struct {
	db *sql.DB
}

// NewCandleStore opens (or creates) the store with WAL mode enabled.
func NewCandleStore(dbPath string) (*CandleStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			pair     TEXT    NOT NULL,
			interval TEXT    NOT NULL,
			time     INTEGER NOT NULL,
			open     REAL    NOT NULL,
			high     REAL    NOT NULL,
			low      REAL    NOT NULL,
			close    REAL    NOT NULL,
			volume   REAL    NOT NULL,
			PRIMARY KEY (pair, interval, time)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create candles table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	return &CandleStore{db: db}, nil
}

// SaveCandles upserts a window of candles for the pair/interval. Re-fetched
// buckets overwrite their stored row, so the live bucket converges to its
// closed values.
func (s *CandleStore) SaveCandles(ctx context.Context, pair, interval string, candles []domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (pair, interval, time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pair, interval, time) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, pair, interval, c.Time, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return fmt.Errorf("failed to upsert candle %d: %w", c.Time, err)
		}
	}

	return tx.Commit()
}

// LoadCandles returns up to limit most-recent candles for the pair/interval,
// ordered oldest first. An empty result is not an error.
func (s *CandleStore) LoadCandles(ctx context.Context, pair, interval string, limit int) ([]domain.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, open, high, low, close, volume FROM candles
		WHERE pair = ? AND interval = ?
		ORDER BY time DESC LIMIT ?
	`, pair, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var out []domain.Candle
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returns newest first; series order is oldest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *CandleStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a value from the metadata table. Missing keys return
// an empty string without error.
func (s *CandleStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

const maxLeverageKey = "max_leverage"

// SaveMaxLeverage caches the exchange's per-asset leverage limits.
func (s *CandleStore) SaveMaxLeverage(ctx context.Context, lev map[string]int, ts int64) error {
	b, err := json.Marshal(lev)
	if err != nil {
		return err
	}
	return s.UpsertMetadata(ctx, maxLeverageKey, string(b), ts)
}

// LoadMaxLeverage returns the cached leverage limits, or nil when the cache
// is empty.
func (s *CandleStore) LoadMaxLeverage(ctx context.Context) (map[string]int, error) {
	v, err := s.GetMetadata(ctx, maxLeverageKey)
	if err != nil || v == "" {
		return nil, err
	}
	var lev map[string]int
	if err := json.Unmarshal([]byte(v), &lev); err != nil {
		return nil, fmt.Errorf("corrupt leverage cache: %w", err)
	}
	return lev, nil
}

// Close closes the underlying database.
func (s *CandleStore) Close() error {
	return s.db.Close()
}
