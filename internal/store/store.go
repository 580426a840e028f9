// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/lingua/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Store wraps SQLite access for tracker state and the answer log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			item_id INTEGER NOT NULL,
			mode TEXT NOT NULL,
			given TEXT NOT NULL,
			correct INTEGER NOT NULL,
			answered_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_answers_scope ON answers(scope);`,
		`CREATE INDEX IF NOT EXISTS idx_answers_run ON answers(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewRunID returns an identifier for a practice run.
func NewRunID() string {
	return uuid.NewString()
}

// GetValue returns the value stored under key.
func (s *Store) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetValue stores value under key, replacing any previous value.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(timeLayout))
	return err
}

// RemoveValue deletes key. Missing keys are not an error.
func (s *Store) RemoveValue(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// KV exposes the kv table through the tracker's synchronous interface.
func (s *Store) KV() *KV {
	return &KV{store: s}
}

// KV adapts Store to tracker.KV.
type KV struct {
	store *Store
}

// Get implements tracker.KV.
func (k *KV) Get(key string) (string, bool, error) {
	return k.store.GetValue(context.Background(), key)
}

// Set implements tracker.KV.
func (k *KV) Set(key, value string) error {
	return k.store.SetValue(context.Background(), key, value)
}

// Remove implements tracker.KV.
func (k *KV) Remove(key string) error {
	return k.store.RemoveValue(context.Background(), key)
}

// InsertAnswer appends an evaluated answer to the log.
func (s *Store) InsertAnswer(ctx context.Context, a model.Answer) (int64, error) {
	correct := 0
	if a.Correct {
		correct = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (run_id, scope, item_id, mode, given, correct, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.RunID,
		a.Scope,
		a.ItemID,
		a.Mode,
		a.Given,
		correct,
		a.AnsweredAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ScopeTotals counts answers and correct answers for a scope.
func (s *Store) ScopeTotals(ctx context.Context, scope string) (model.Totals, error) {
	var totals model.Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(correct), 0) FROM answers WHERE scope = ?`, scope,
	).Scan(&totals.Total, &totals.Correct)
	if err != nil {
		return model.Totals{}, err
	}
	return totals, nil
}

// DeleteAnswers removes the answer log of a scope.
func (s *Store) DeleteAnswers(ctx context.Context, scope string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM answers WHERE scope = ?`, scope)
	return err
}

// ListRuns returns per-run aggregates ordered by start time.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Scope != "" {
		clauses = append(clauses, "scope = ?")
		args = append(args, cfg.Scope)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "answered_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT run_id, MIN(answered_at) AS started_at, MAX(answered_at) AS ended_at,
		COUNT(*) AS total, SUM(correct) AS correct
		FROM answers
		WHERE %s
		GROUP BY run_id
		ORDER BY started_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var startedAt, endedAt string
		if err := rows.Scan(&agg.RunID, &startedAt, &endedAt, &agg.Total, &agg.Correct); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ItemTotals aggregates answers per item for a scope, optionally limited to runs.
func (s *Store) ItemTotals(ctx context.Context, scope string, runIDs []string) ([]model.ItemAggregate, error) {
	clauses := []string{"scope = ?"}
	args := []any{scope}
	if len(runIDs) > 0 {
		placeholders := make([]string, len(runIDs))
		for i, id := range runIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		clauses = append(clauses, fmt.Sprintf("run_id IN (%s)", strings.Join(placeholders, ",")))
	}
	query := fmt.Sprintf(`SELECT item_id, SUM(correct) AS correct, SUM(1 - correct) AS incorrect
		FROM answers
		WHERE %s
		GROUP BY item_id`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ItemAggregate
	for rows.Next() {
		var agg model.ItemAggregate
		if err := rows.Scan(&agg.ItemID, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
