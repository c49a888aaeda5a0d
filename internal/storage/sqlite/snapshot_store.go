// Package sqlite provides a SQLite implementation of the snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"bibliograph/internal/graph"
	"bibliograph/internal/storage"
	"bibliograph/pkg/types"
)

// Schema is the snapshot schema. All statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	label      TEXT NOT NULL DEFAULT '',
	order_key  REAL,
	search_key TEXT NOT NULL DEFAULT '',
	attrs      TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);

CREATE TABLE IF NOT EXISTS relations (
	subject   TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object    TEXT NOT NULL,
	PRIMARY KEY (subject, predicate, object)
);

CREATE INDEX IF NOT EXISTS idx_relations_ops ON relations(object, predicate);

CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	created_at     TIMESTAMP NOT NULL,
	entity_count   INTEGER NOT NULL,
	relation_count INTEGER NOT NULL,
	warning_count  INTEGER NOT NULL DEFAULT 0
);
`

// SnapshotStore implements storage.SnapshotStore using SQLite.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens (or creates) a SQLite snapshot database.
func NewSnapshotStore(dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors; WAL mode lets
	// readers proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Load restores the most recent snapshot.
func (s *SnapshotStore) Load(ctx context.Context) (*graph.Store, *storage.RunInfo, error) {
	info := &storage.RunInfo{}
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, created_at, entity_count, relation_count, warning_count
		 FROM runs ORDER BY created_at DESC LIMIT 1`).
		Scan(&info.RunID, &info.CreatedAt, &info.EntityCount, &info.RelationCount, &info.WarningCount)
	if err == sql.ErrNoRows {
		return nil, nil, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: failed to read run metadata: %w", err)
	}

	g := graph.New()

	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, label, order_key, search_key, attrs FROM entities`)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: failed to read entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e        types.Entity
			orderKey sql.NullFloat64
			attrs    string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Label, &orderKey, &e.SearchKey, &attrs); err != nil {
			return nil, nil, fmt.Errorf("sqlite: failed to scan entity: %w", err)
		}
		if orderKey.Valid {
			e.OrderKey = orderKey.Float64
			e.HasOrder = true
		}
		if attrs != "" && attrs != "{}" {
			if err := json.Unmarshal([]byte(attrs), &e.Attrs); err != nil {
				return nil, nil, fmt.Errorf("sqlite: entity %s has corrupt attrs: %w", e.ID, err)
			}
		}
		g.AddEntity(&e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("sqlite: entity iteration failed: %w", err)
	}

	relRows, err := s.db.QueryContext(ctx, `SELECT subject, predicate, object FROM relations`)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: failed to read relations: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var r types.Relation
		if err := relRows.Scan(&r.Subject, &r.Predicate, &r.Object); err != nil {
			return nil, nil, fmt.Errorf("sqlite: failed to scan relation: %w", err)
		}
		g.AddRelation(r.Subject, r.Predicate, r.Object)
	}
	if err := relRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("sqlite: relation iteration failed: %w", err)
	}
	return g, info, nil
}

// Save replaces the stored snapshot with g inside one transaction.
func (s *SnapshotStore) Save(ctx context.Context, g *graph.Store, info storage.RunInfo) error {
	if g == nil {
		return fmt.Errorf("%w: graph is required", storage.ErrInvalidInput)
	}
	if info.RunID == "" {
		return fmt.Errorf("%w: run ID is required", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM relations`); err != nil {
		return fmt.Errorf("sqlite: failed to clear relations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("sqlite: failed to clear entities: %w", err)
	}

	entStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entities (id, kind, label, order_key, search_key, attrs) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: failed to prepare entity insert: %w", err)
	}
	defer entStmt.Close()

	var saveErr error
	forEachEntity(g, func(e *types.Entity) bool {
		var orderKey interface{}
		if e.HasOrder {
			orderKey = e.OrderKey
		}
		attrs := "{}"
		if len(e.Attrs) > 0 {
			data, err := json.Marshal(e.Attrs)
			if err != nil {
				saveErr = fmt.Errorf("sqlite: failed to encode attrs of %s: %w", e.ID, err)
				return false
			}
			attrs = string(data)
		}
		if _, err := entStmt.ExecContext(ctx, e.ID, string(e.Kind), e.Label, orderKey, e.SearchKey, attrs); err != nil {
			saveErr = fmt.Errorf("sqlite: failed to insert entity %s: %w", e.ID, err)
			return false
		}
		return true
	})
	if saveErr != nil {
		return saveErr
	}

	relStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO relations (subject, predicate, object) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: failed to prepare relation insert: %w", err)
	}
	defer relStmt.Close()

	g.Ascend(func(r types.Relation) bool {
		if _, err := relStmt.ExecContext(ctx, r.Subject, string(r.Predicate), r.Object); err != nil {
			saveErr = fmt.Errorf("sqlite: failed to insert relation: %w", err)
			return false
		}
		return true
	})
	if saveErr != nil {
		return saveErr
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, entity_count, relation_count, warning_count) VALUES (?, ?, ?, ?, ?)`,
		info.RunID, info.CreatedAt, info.EntityCount, info.RelationCount, info.WarningCount); err != nil {
		return fmt.Errorf("sqlite: failed to record run: %w", err)
	}
	return tx.Commit()
}

// Close closes the database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// forEachEntity walks every kind so the whole entity set is visited in a
// stable order.
func forEachEntity(g *graph.Store, visit func(*types.Entity) bool) {
	for _, kind := range types.Kinds {
		for _, e := range g.Entities(kind) {
			if !visit(e) {
				return
			}
		}
	}
}
