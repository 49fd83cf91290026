// ABOUTME: BadgerDB implementation of record.Store
// ABOUTME: Keys rows as rec/<table>/<zero-padded id> with a per-table sequence key

package kv

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/dealdesk/record"
)

// DefaultDir is where the Badger backend lives when no directory is configured.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, "dealdesk", "kv")
}

// Store keeps records in a Badger database.
type Store struct {
	db *badger.DB
	// mu serializes id allocation so sequence reads and writes don't conflict.
	mu sync.Mutex
}

// Open opens (or creates) a Badger database in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a Badger database that lives only in memory.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func rowPrefix(table string) []byte {
	return []byte("rec/" + table + "/")
}

func rowKey(table string, id int) []byte {
	return []byte(fmt.Sprintf("rec/%s/%012d", table, id))
}

func seqKey(table string) []byte {
	return []byte("seq/" + table)
}

func (s *Store) Scan(_ context.Context, table string) ([]record.Row, error) {
	var rows []record.Row
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := rowPrefix(table)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var id int
			if _, err := fmt.Sscanf(string(item.Key()[len(prefix):]), "%d", &id); err != nil {
				return fmt.Errorf("bad key %q: %w", item.Key(), err)
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			fields, err := decodeFields(value)
			if err != nil {
				return fmt.Errorf("record %d: %w", id, err)
			}
			rows = append(rows, record.Row{ID: id, Fields: fields})
		}
		return nil
	})
	return rows, err
}

func (s *Store) Load(_ context.Context, table string, id int) (record.Row, error) {
	var fields map[string]any
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rowKey(table, id))
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		fields, err = decodeFields(value)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return record.Row{}, record.ErrRecordNotFound
	}
	if err != nil {
		return record.Row{}, err
	}
	return record.Row{ID: id, Fields: fields}, nil
}

func (s *Store) Insert(_ context.Context, table string, fields map[string]any) (int, error) {
	value, err := encodeFields(fields)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id int
	err = s.db.Update(func(txn *badger.Txn) error {
		next := uint64(1)
		item, err := txn.Get(seqKey(table))
		switch {
		case err == nil:
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			next = binary.BigEndian.Uint64(raw) + 1
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, next)
		if err := txn.Set(seqKey(table), buf); err != nil {
			return err
		}
		id = int(next)
		return txn.Set(rowKey(table, id), value)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Save(_ context.Context, table string, row record.Row) error {
	value, err := encodeFields(row.Fields)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(rowKey(table, row.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return record.ErrRecordNotFound
			}
			return err
		}
		return txn.Set(rowKey(table, row.ID), value)
	})
}

func (s *Store) Remove(_ context.Context, table string, id int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(rowKey(table, id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return record.ErrRecordNotFound
			}
			return err
		}
		return txn.Delete(rowKey(table, id))
	})
}

func encodeFields(fields map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != "Id" {
			clean[k] = v
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

func decodeFields(data []byte) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
