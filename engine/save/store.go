package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kestran/refit/types"
)

// Store is a SQLite-backed per-entity blob store implementing the host
// persistence hook: one opaque record per entity, keyed by its stable ID.
// Missing entries are not an error; absent means default/unmarked.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and initializes) a store at the given path.
// ":memory:" creates an in-memory database.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging store: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS improvement_state (
		entity_id TEXT PRIMARY KEY,
		blob      TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes one entity's record, replacing any existing blob.
func (s *Store) Put(ctx context.Context, entityID string, st types.ImprovementState) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state for %s: %w", entityID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO improvement_state (entity_id, blob) VALUES (?, ?)
		 ON CONFLICT(entity_id) DO UPDATE SET blob = excluded.blob`,
		entityID, string(blob))
	if err != nil {
		return fmt.Errorf("writing state for %s: %w", entityID, err)
	}
	return nil
}

// Get reads one entity's record. ok is false when no record exists.
func (s *Store) Get(ctx context.Context, entityID string) (st types.ImprovementState, ok bool, err error) {
	var blob string
	err = s.db.QueryRowContext(ctx,
		`SELECT blob FROM improvement_state WHERE entity_id = ?`, entityID).Scan(&blob)
	if err == sql.ErrNoRows {
		return types.ImprovementState{}, false, nil
	}
	if err != nil {
		return types.ImprovementState{}, false, fmt.Errorf("reading state for %s: %w", entityID, err)
	}
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		// Corrupt blob: recover locally by treating it as absent.
		return types.ImprovementState{}, false, nil
	}
	return st, true, nil
}

// Delete removes one entity's record. Deleting a missing record is a no-op.
func (s *Store) Delete(ctx context.Context, entityID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM improvement_state WHERE entity_id = ?`, entityID)
	if err != nil {
		return fmt.Errorf("deleting state for %s: %w", entityID, err)
	}
	return nil
}

// PutAll replaces the whole store contents in one transaction.
func (s *Store) PutAll(ctx context.Context, states map[string]types.ImprovementState) error {
	return s.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM improvement_state`); err != nil {
			return err
		}
		for id, st := range states {
			blob, err := json.Marshal(st)
			if err != nil {
				return fmt.Errorf("encoding state for %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO improvement_state (entity_id, blob) VALUES (?, ?)`,
				id, string(blob)); err != nil {
				return fmt.Errorf("writing state for %s: %w", id, err)
			}
		}
		return nil
	})
}

// LoadAll reads every record. Corrupt blobs are skipped, not fatal.
func (s *Store) LoadAll(ctx context.Context) (map[string]types.ImprovementState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id, blob FROM improvement_state`)
	if err != nil {
		return nil, fmt.Errorf("reading states: %w", err)
	}
	defer rows.Close()

	out := map[string]types.ImprovementState{}
	for rows.Next() {
		var id, blob string
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning state row: %w", err)
		}
		var st types.ImprovementState
		if err := json.Unmarshal([]byte(blob), &st); err != nil {
			continue
		}
		out[id] = st
	}
	return out, rows.Err()
}

// inTransaction executes fn within a transaction, rolling back on error.
func (s *Store) inTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
