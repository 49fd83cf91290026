// ABOUTME: SQLite implementation of record.Store
// ABOUTME: Rows are kept as JSON field documents keyed by table and integer id
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/dealdesk/record"
)

// Store persists records in the records table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the database at path and wraps it in a Store.
func Open(path string) (*Store, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Scan(ctx context.Context, table string) ([]record.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields FROM records WHERE tbl = ? ORDER BY id
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []record.Row
	for rows.Next() {
		var id int
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", id, err)
		}
		out = append(out, record.Row{ID: id, Fields: fields})
	}
	return out, rows.Err()
}

func (s *Store) Load(ctx context.Context, table string, id int) (record.Row, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT fields FROM records WHERE tbl = ? AND id = ?
	`, table, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return record.Row{}, record.ErrRecordNotFound
	}
	if err != nil {
		return record.Row{}, err
	}

	fields, err := decodeFields(raw)
	if err != nil {
		return record.Row{}, fmt.Errorf("record %d: %w", id, err)
	}
	return record.Row{ID: id, Fields: fields}, nil
}

func (s *Store) Insert(ctx context.Context, table string, fields map[string]any) (int, error) {
	raw, err := encodeFields(fields)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sequences (tbl, last_id) VALUES (?, 1)
		ON CONFLICT(tbl) DO UPDATE SET last_id = last_id + 1
		RETURNING last_id
	`, table).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("allocate id: %w", err)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (tbl, id, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, table, id, raw, now, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Save(ctx context.Context, table string, row record.Row) error {
	raw, err := encodeFields(row.Fields)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE records SET fields = ?, updated_at = ? WHERE tbl = ? AND id = ?
	`, raw, time.Now(), table, row.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) Remove(ctx context.Context, table string, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE tbl = ? AND id = ?`, table, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return record.ErrRecordNotFound
	}
	return nil
}

func encodeFields(fields map[string]any) (string, error) {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != "Id" {
			clean[k] = v
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(data), nil
}

func decodeFields(raw string) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
