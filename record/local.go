// ABOUTME: Record client that runs platform semantics over a local Store
// ABOUTME: Handles filtering, projection, lookup expansion, and per-record batch results
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Local implements Client on top of a Store, so the CLI and tests can run
// without the hosted platform.
type Local struct {
	store  Store
	schema Schema
	logger *zap.Logger
}

// LocalOption configures a Local client.
type LocalOption func(*Local)

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *zap.Logger) LocalOption {
	return func(l *Local) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocal creates a client over store that enforces schema.
func NewLocal(store Store, schema Schema, opts ...LocalOption) *Local {
	l := &Local{store: store, schema: schema, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) FetchRecords(ctx context.Context, table string, query Query) (*Response, error) {
	ts, ok := l.schema[table]
	if !ok {
		return &Response{Message: fmt.Sprintf("Table %s not found", table)}, nil
	}

	rows, err := l.store.Scan(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		ok, err := matchQuery(row, query)
		if err != nil {
			var opErr *UnsupportedOperatorError
			if errors.As(err, &opErr) {
				return &Response{Message: opErr.Error()}, nil
			}
			return nil, err
		}
		if !ok {
			continue
		}
		projected, err := l.project(ctx, ts, row, query.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, projected)
	}

	l.logger.Debug("fetched records", zap.String("table", table), zap.Int("count", len(out)))
	return dataResponse(out)
}

func (l *Local) GetRecordByID(ctx context.Context, table string, id int, query Query) (*Response, error) {
	ts, ok := l.schema[table]
	if !ok {
		return &Response{Message: fmt.Sprintf("Table %s not found", table)}, nil
	}

	row, err := l.store.Load(ctx, table, id)
	if errors.Is(err, ErrRecordNotFound) {
		return &Response{Message: fmt.Sprintf("Record with Id %d not found", id)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%d: %w", table, id, err)
	}

	projected, err := l.project(ctx, ts, row, query.Fields)
	if err != nil {
		return nil, err
	}
	return dataResponse(projected)
}

func (l *Local) CreateRecord(ctx context.Context, table string, req BatchRequest) (*BatchResponse, error) {
	ts, ok := l.schema[table]
	if !ok {
		return &BatchResponse{Message: fmt.Sprintf("Table %s not found", table)}, nil
	}

	results := make([]Result, 0, len(req.Records))
	for _, rec := range req.Records {
		fields := cloneFields(rec)
		if msg, err := l.checkLookups(ctx, ts, fields); err != nil {
			return nil, err
		} else if msg != "" {
			results = append(results, Result{Message: msg})
			continue
		}

		id, err := l.store.Insert(ctx, table, fields)
		if err != nil {
			return nil, fmt.Errorf("insert %s: %w", table, err)
		}
		result, err := l.rowResult(ctx, ts, Row{ID: id, Fields: fields})
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	l.logger.Debug("created records", zap.String("table", table), zap.Int("submitted", len(req.Records)))
	return &BatchResponse{Success: true, Results: results}, nil
}

func (l *Local) UpdateRecord(ctx context.Context, table string, req BatchRequest) (*BatchResponse, error) {
	ts, ok := l.schema[table]
	if !ok {
		return &BatchResponse{Message: fmt.Sprintf("Table %s not found", table)}, nil
	}

	results := make([]Result, 0, len(req.Records))
	for _, rec := range req.Records {
		id, ok := toID(rec["Id"])
		if !ok {
			results = append(results, Result{Message: "Record Id is required"})
			continue
		}

		row, err := l.store.Load(ctx, table, id)
		if errors.Is(err, ErrRecordNotFound) {
			results = append(results, Result{ID: id, Message: fmt.Sprintf("Record with Id %d not found", id)})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s/%d: %w", table, id, err)
		}

		for k, v := range cloneFields(rec) {
			row.Fields[k] = v
		}
		if msg, err := l.checkLookups(ctx, ts, row.Fields); err != nil {
			return nil, err
		} else if msg != "" {
			results = append(results, Result{ID: id, Message: msg})
			continue
		}

		if err := l.store.Save(ctx, table, row); err != nil {
			return nil, fmt.Errorf("save %s/%d: %w", table, id, err)
		}
		result, err := l.rowResult(ctx, ts, row)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	l.logger.Debug("updated records", zap.String("table", table), zap.Int("submitted", len(req.Records)))
	return &BatchResponse{Success: true, Results: results}, nil
}

func (l *Local) DeleteRecord(ctx context.Context, table string, req DeleteRequest) (*BatchResponse, error) {
	if _, ok := l.schema[table]; !ok {
		return &BatchResponse{Message: fmt.Sprintf("Table %s not found", table)}, nil
	}

	results := make([]Result, 0, len(req.RecordIDs))
	for _, id := range req.RecordIDs {
		err := l.store.Remove(ctx, table, id)
		if errors.Is(err, ErrRecordNotFound) {
			results = append(results, Result{ID: id, Message: fmt.Sprintf("Record with Id %d not found", id)})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("remove %s/%d: %w", table, id, err)
		}
		results = append(results, Result{ID: id, Success: true})
	}

	l.logger.Debug("deleted records", zap.String("table", table), zap.Int("submitted", len(req.RecordIDs)))
	return &BatchResponse{Success: true, Results: results}, nil
}

// checkLookups returns a failure message when a lookup does not resolve.
func (l *Local) checkLookups(ctx context.Context, ts TableSchema, fields map[string]any) (string, error) {
	for field, rule := range ts.Lookups {
		v, present := fields[field]
		id, ok := toID(v)
		if !ok || id == 0 {
			if rule.Required {
				return fmt.Sprintf("%s is required", field), nil
			}
			if present && v != nil {
				return fmt.Sprintf("Invalid reference for %s", field), nil
			}
			continue
		}
		if _, err := l.store.Load(ctx, rule.Table, id); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return fmt.Sprintf("Invalid reference for %s: record %d not found", field, id), nil
			}
			return "", err
		}
		fields[field] = id
	}
	return "", nil
}

func (l *Local) rowResult(ctx context.Context, ts TableSchema, row Row) (Result, error) {
	projected, err := l.project(ctx, ts, row, nil)
	if err != nil {
		return Result{}, err
	}
	data, err := json.Marshal(projected)
	if err != nil {
		return Result{}, err
	}
	return Result{ID: row.ID, Success: true, Data: data}, nil
}

// project renders a row with the requested fields. An empty selector
// returns every stored field. Lookups requested with a ReferenceField,
// and all lookups when no selector is given, expand to {Id, Name}.
func (l *Local) project(ctx context.Context, ts TableSchema, row Row, fields []Field) (map[string]any, error) {
	out := map[string]any{"Id": row.ID}

	if len(fields) == 0 {
		for k, v := range row.Fields {
			out[k] = v
		}
		out["Name"] = ts.displayName(row.Fields)
		for field, rule := range ts.Lookups {
			if _, ok := row.Fields[field]; !ok {
				continue
			}
			expanded, err := l.expand(ctx, rule, row.Fields[field])
			if err != nil {
				return nil, err
			}
			out[field] = expanded
		}
		return out, nil
	}

	for _, f := range fields {
		name := f.Field.Name
		if name == "Name" {
			out["Name"] = ts.displayName(row.Fields)
			continue
		}
		v, ok := row.Fields[name]
		if !ok {
			continue
		}
		if rule, isLookup := ts.Lookups[name]; isLookup && f.ReferenceField != nil {
			expanded, err := l.expand(ctx, rule, v)
			if err != nil {
				return nil, err
			}
			out[name] = expanded
			continue
		}
		out[name] = v
	}
	return out, nil
}

func (l *Local) expand(ctx context.Context, rule LookupRule, v any) (any, error) {
	id, ok := toID(v)
	if !ok || id == 0 {
		return nil, nil
	}
	target, err := l.store.Load(ctx, rule.Table, id)
	if errors.Is(err, ErrRecordNotFound) {
		return map[string]any{"Id": id, "Name": ""}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"Id": id, "Name": l.schema[rule.Table].displayName(target.Fields)}, nil
}

func dataResponse(v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return &Response{Success: true, Data: data}, nil
}
