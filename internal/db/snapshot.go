package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

const schemaMain = "main"

// persistLocked writes the current database image over the backing file.
// The caller holds the writer lock. When the write fails the in-memory
// database is rolled back to the image already on disk, so a mutation is
// never visible in memory without being durable.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := s.serialize()
	if err == nil {
		err = writeFileAtomic(s.path, data)
	}
	if err != nil {
		s.logger.Error("snapshot failed", "path", s.path, "error", err)
		s.restoreLocked()
		return &PersistenceError{Statement: "snapshot " + s.path, Err: err}
	}
	s.last = data
	return nil
}

// restoreLocked reloads the last image written to disk into memory.
func (s *Store) restoreLocked() {
	if s.last == nil {
		s.logger.Warn("no previous snapshot to restore", "path", s.path)
		return
	}
	if err := s.deserialize(s.last); err != nil {
		s.logger.Error("restore from snapshot failed", "path", s.path, "error", err)
	}
}

func (s *Store) serialize() ([]byte, error) {
	var data []byte
	err := s.conn.Raw(func(dc any) error {
		c, ok := dc.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", dc)
		}
		var err error
		data, err = c.Serialize(schemaMain)
		return err
	})
	return data, err
}

func (s *Store) deserialize(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty database image")
	}
	return s.conn.Raw(func(dc any) error {
		c, ok := dc.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", dc)
		}
		return c.Deserialize(data, schemaMain)
	})
}

// writeFileAtomic replaces path with data as a whole: a crash leaves either
// the previous file or the new one, never a mix.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	cleanup := func() { _ = os.Remove(tmp) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		cleanup()
		return err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
