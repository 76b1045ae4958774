package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"concierge/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists checkpoints in SQLite so a resume can arrive long
// after the suspension, from a different process instance.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		id           TEXT PRIMARY KEY,
		capability   TEXT NOT NULL,
		prompt       TEXT,
		options      TEXT,
		arguments    TEXT,
		frames       TEXT NOT NULL,
		advertisement TEXT,
		resolved     INTEGER NOT NULL DEFAULT 0,
		created_at   DATETIME NOT NULL,
		resolved_at  DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_checkpoints_pending ON checkpoints(resolved, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, cp *domain.Checkpoint) error {
	options, err := json.Marshal(cp.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	arguments, err := json.Marshal(cp.Arguments)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}
	frames, err := json.Marshal(cp.Frames)
	if err != nil {
		return fmt.Errorf("marshal frames: %w", err)
	}
	advertisement, err := json.Marshal(cp.Advertisement)
	if err != nil {
		return fmt.Errorf("marshal advertisement: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (id, capability, prompt, options, arguments, frames, advertisement, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID, cp.CapabilityName, cp.Prompt, string(options), string(arguments), string(frames), string(advertisement), cp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Claim(ctx context.Context, id string) (*domain.Checkpoint, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE checkpoints SET resolved = 1, resolved_at = ? WHERE id = ? AND resolved = 0`,
		time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("claim checkpoint: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim checkpoint: %w", err)
	}
	if rows == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM checkpoints WHERE id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, domain.ErrUnknownCheckpoint
		}
		if err != nil {
			return nil, fmt.Errorf("claim checkpoint: %w", err)
		}
		return nil, domain.ErrAlreadyResolved
	}
	return s.get(ctx, id)
}

func (s *SQLiteStore) get(ctx context.Context, id string) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	var options, arguments, frames, advertisement string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, capability, prompt, options, arguments, frames, advertisement, created_at
		 FROM checkpoints WHERE id = ?`, id,
	).Scan(&cp.ID, &cp.CapabilityName, &cp.Prompt, &options, &arguments, &frames, &advertisement, &cp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUnknownCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if err := json.Unmarshal([]byte(options), &cp.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal([]byte(arguments), &cp.Arguments); err != nil {
		return nil, fmt.Errorf("unmarshal arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(frames), &cp.Frames); err != nil {
		return nil, fmt.Errorf("unmarshal frames: %w", err)
	}
	if err := json.Unmarshal([]byte(advertisement), &cp.Advertisement); err != nil {
		return nil, fmt.Errorf("unmarshal advertisement: %w", err)
	}
	return &cp, nil
}

func (s *SQLiteStore) Sweep(ctx context.Context, pendingCutoff, resolvedCutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checkpoints
		 WHERE (resolved = 0 AND created_at < ?) OR (resolved = 1 AND resolved_at < ?)`,
		pendingCutoff, resolvedCutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("sweep checkpoints: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (s *SQLiteStore) Pending(ctx context.Context) ([]*domain.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM checkpoints WHERE resolved = 0 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list pending checkpoints: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending checkpoint: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending checkpoints: %w", err)
	}

	out := make([]*domain.Checkpoint, 0, len(ids))
	for _, id := range ids {
		cp, err := s.get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
