package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
	"github.com/cognicore/rhymer/pkg/rhymer/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rhyme_words (
	rhyme_key TEXT NOT NULL,
	word TEXT NOT NULL,
	PRIMARY KEY(rhyme_key, word)
);

CREATE TABLE IF NOT EXISTS chain_nodes (
	word TEXT PRIMARY KEY,
	starts INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS chain_edges (
	word TEXT NOT NULL,
	prev TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(word, prev)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

const (
	metaVersionKey = "schema_version"
	metaInfoKey    = "meta"
)

// Exists reports whether a snapshot was saved
func (s *sqliteStore) Exists(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meta WHERE key = ?`, metaVersionKey).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Save replaces the stored snapshot in one transaction
func (s *sqliteStore) Save(ctx context.Context, snap index.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return err
	}

	info, err := json.Marshal(snap.Meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?), (?, ?)`,
		metaVersionKey, strconv.Itoa(snap.Version), metaInfoKey, string(info)); err != nil {
		return err
	}

	if err := insertRhymes(ctx, tx, snap.Rhymes); err != nil {
		return err
	}
	if err := insertChain(ctx, tx, snap.Chain); err != nil {
		return err
	}

	return tx.Commit()
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"meta", "rhyme_words", "chain_nodes", "chain_edges"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return nil
}

func insertRhymes(ctx context.Context, tx *sql.Tx, rhymes map[string][]string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO rhyme_words (rhyme_key, word) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for key, words := range rhymes {
		for _, w := range words {
			if _, err := stmt.ExecContext(ctx, key, w); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertChain(ctx context.Context, tx *sql.Tx, chain map[string]index.ChainNode) error {
	nodeStmt, err := tx.PrepareContext(ctx, `INSERT INTO chain_nodes (word, starts) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO chain_edges (word, prev, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for word, n := range chain {
		if _, err := nodeStmt.ExecContext(ctx, word, n.Starts); err != nil {
			return err
		}
		for prev, count := range n.Prev {
			if count <= 0 {
				continue
			}
			if _, err := edgeStmt.ExecContext(ctx, word, prev, count); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load reads the stored snapshot
func (s *sqliteStore) Load(ctx context.Context) (index.Snapshot, error) {
	var snap index.Snapshot

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return snap, err
	}
	found := false
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return snap, err
		}
		switch key {
		case metaVersionKey:
			found = true
			if snap.Version, err = strconv.Atoi(value); err != nil {
				rows.Close()
				return snap, fmt.Errorf("schema version %q: %w", value, err)
			}
		case metaInfoKey:
			if err := json.Unmarshal([]byte(value), &snap.Meta); err != nil {
				rows.Close()
				return snap, fmt.Errorf("decode meta: %w", err)
			}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}
	if !found {
		return index.Snapshot{}, internalerr.ErrNotFound
	}

	if snap.Rhymes, err = s.loadRhymes(ctx); err != nil {
		return index.Snapshot{}, err
	}
	if snap.Chain, err = s.loadChain(ctx); err != nil {
		return index.Snapshot{}, err
	}
	return snap, nil
}

func (s *sqliteStore) loadRhymes(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rhyme_key, word FROM rhyme_words ORDER BY rhyme_key, word`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rhymes := make(map[string][]string)
	for rows.Next() {
		var key, word string
		if err := rows.Scan(&key, &word); err != nil {
			return nil, err
		}
		rhymes[key] = append(rhymes[key], word)
	}
	return rhymes, rows.Err()
}

func (s *sqliteStore) loadChain(ctx context.Context) (map[string]index.ChainNode, error) {
	chain := make(map[string]index.ChainNode)

	rows, err := s.db.QueryContext(ctx, `SELECT word, starts FROM chain_nodes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var word string
		var starts int64
		if err := rows.Scan(&word, &starts); err != nil {
			rows.Close()
			return nil, err
		}
		chain[word] = index.ChainNode{Starts: starts, Prev: make(map[string]int64)}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edges, err := s.db.QueryContext(ctx, `SELECT word, prev, count FROM chain_edges`)
	if err != nil {
		return nil, err
	}
	defer edges.Close()
	for edges.Next() {
		var word, prev string
		var count int64
		if err := edges.Scan(&word, &prev, &count); err != nil {
			return nil, err
		}
		n, ok := chain[word]
		if !ok {
			n = index.ChainNode{Prev: make(map[string]int64)}
			chain[word] = n
		}
		n.Prev[prev] = count
	}
	return chain, edges.Err()
}

// Remove deletes the stored snapshot
func (s *sqliteStore) Remove(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearTables(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}
