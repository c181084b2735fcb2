package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	stdfs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the process-wide handle to the embedded relational store.
//
// The whole database lives in a single in-memory SQLite connection. After
// every mutating operation the complete database image is serialized and
// written over the backing file, so the file always holds the last committed
// state. Mutations are serialized behind one writer lock; reads share the
// lock with each other but never overlap a mutation.
type Store struct {
	mu     sync.RWMutex
	sqlDB  *sql.DB
	conn   *sql.Conn
	path   string
	last   []byte // image currently on disk
	logger *slog.Logger
}

// Open loads the backing file at path into memory, or starts from an empty
// database when the file does not exist yet. An empty path keeps the store
// purely in memory, which is what tests use.
func Open(path string) (*Store, error) {
	d, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// One physical connection: every other connection would see its own
	// private in-memory database.
	d.SetMaxOpenConns(1)
	d.SetMaxIdleConns(1)
	d.SetConnMaxLifetime(0)
	d.SetConnMaxIdleTime(0)

	ctx := context.Background()
	conn, err := d.Conn(ctx)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	s := &Store{
		sqlDB:  d,
		conn:   conn,
		path:   path,
		logger: slog.Default().With("component", "db"),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil && len(data) > 0:
			if err := s.deserialize(data); err != nil {
				_ = s.closeConns()
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			s.last = data
		case err == nil:
			// A zero-byte file is a fresh store.
		case errors.Is(err, stdfs.ErrNotExist):
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				_ = s.closeConns()
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		default:
			_ = s.closeConns()
			return nil, err
		}
	}

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys=ON`); err != nil {
		_ = s.closeConns()
		return nil, err
	}
	s.logger.Info("store opened", "path", path, "bytes", len(s.last))
	return s, nil
}

// Path returns the backing file path ("" for memory-only stores).
func (s *Store) Path() string { return s.path }

// Prepare returns a statement bound to the store. Each Run takes the writer
// lock and rewrites the backing file before returning.
func (s *Store) Prepare(text string) *Statement {
	return &Statement{text: text, store: s}
}

// Exec runs schema DDL (or any multi-statement script) as one mutation.
func (s *Store) Exec(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.conn.ExecContext(ctx, text); err != nil {
		return s.fail(text, err)
	}
	return s.persistLocked()
}

// Tx runs fn as a single atomic unit under the writer lock. Statements
// prepared on the Tx share the transaction; the backing file is rewritten
// once, after commit. Any error returned by fn rolls the unit back.
func (s *Store) Tx(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("BEGIN", err)
	}
	if err := fn(&Tx{tx: sqlTx, store: s}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return s.fail("COMMIT", err)
	}
	return s.persistLocked()
}

// Close releases the connection. Nothing needs flushing: every mutation has
// already been written out.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeConns()
}

func (s *Store) closeConns() error {
	err := s.conn.Close()
	if cerr := s.sqlDB.Close(); err == nil {
		err = cerr
	}
	return err
}

// fail logs the statement that failed and wraps err. Statement text stays
// inside the process; callers only ever see the opaque PersistenceError.
func (s *Store) fail(text string, err error) error {
	s.logger.Error("statement failed", "statement", text, "error", err)
	return &PersistenceError{Statement: text, Err: err}
}

// Tx is a transaction opened by Store.Tx.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

// Prepare returns a statement that executes inside the transaction.
func (t *Tx) Prepare(text string) *Statement {
	return &Statement{text: text, store: t.store, tx: t.tx}
}

// Exec runs DDL inside the transaction.
func (t *Tx) Exec(ctx context.Context, text string) error {
	if _, err := t.tx.ExecContext(ctx, text); err != nil {
		return t.store.fail(text, err)
	}
	return nil
}

// Preparer is implemented by both *Store and *Tx so repositories can run the
// same statements inside or outside a transaction.
type Preparer interface {
	Prepare(text string) *Statement
}
