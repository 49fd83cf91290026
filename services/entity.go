// ABOUTME: Generic single-record CRUD shared by the four entity services
// ABOUTME: Builds payloads, calls the record client, partitions results, and applies failure policy
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/notify"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/record"
	"go.uber.org/zap"
)

// Deps are the collaborators every service shares.
type Deps struct {
	Client   record.Client
	Notifier notify.Notifier
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Nop
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type entityConfig struct {
	table  string
	noun   string
	plural string
	fields []record.Field
	create payload.Shape
	update payload.Shape
}

// Entity implements the CRUD contract for one record type.
type Entity[T any] struct {
	cfg  entityConfig
	deps Deps
}

func newEntity[T any](deps Deps, cfg entityConfig) *Entity[T] {
	return &Entity[T]{cfg: cfg, deps: deps.withDefaults()}
}

// Table returns the record type name.
func (e *Entity[T]) Table() string {
	return e.cfg.table
}

func (e *Entity[T]) query() record.Query {
	return record.Query{Fields: e.cfg.fields}
}

func (e *Entity[T]) logFailure(op Op, msg string, fields ...zap.Field) {
	e.deps.Logger.Error("record operation failed",
		append([]zap.Field{zap.String("table", e.cfg.table), zap.String("op", string(op)), zap.String("message", msg)}, fields...)...)
}

func (e *Entity[T]) notifyClient(op Op, msg string) {
	if !PolicyFor(op).NotifyClient {
		return
	}
	if msg == "" {
		msg = fmt.Sprintf("Failed to %s %s", op.verb(), strings.ToLower(e.cfg.noun))
	}
	e.deps.Notifier.Error(msg)
}

func (e *Entity[T]) notifyRecords(op Op, failed []record.Result) {
	if !PolicyFor(op).NotifyRecords {
		return
	}
	for _, r := range failed {
		if r.Message != "" {
			e.deps.Notifier.Error(r.Message)
		}
	}
}

func (e *Entity[T]) notifyTransport(op Op) {
	if notice := PolicyFor(op).TransportNotice; notice != "" {
		e.deps.Notifier.Error(fmt.Sprintf(notice, strings.ToLower(e.cfg.noun), e.cfg.plural))
	}
}

// GetAll returns every record. Failures notify and yield an empty slice.
func (e *Entity[T]) GetAll(ctx context.Context) []T {
	return e.fetch(ctx, OpGetAll, e.query())
}

// fetch runs a query under op's policy.
func (e *Entity[T]) fetch(ctx context.Context, op Op, q record.Query) []T {
	resp, err := e.deps.Client.FetchRecords(ctx, e.cfg.table, q)
	if err != nil {
		e.logFailure(op, err.Error())
		e.notifyTransport(op)
		return []T{}
	}
	if !resp.Success {
		e.logFailure(op, resp.Message)
		e.notifyClient(op, resp.Message)
		return []T{}
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return []T{}
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(resp.Data, &raw); err != nil {
		e.logFailure(op, err.Error())
		e.notifyTransport(op)
		return []T{}
	}
	return e.decodeRows(op, raw)
}

// decodeRows decodes each record on its own. A record that does not fit T
// is logged and skipped; the rest keep their order.
func (e *Entity[T]) decodeRows(op Op, raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			e.deps.Logger.Warn("skipping undecodable record",
				zap.String("table", e.cfg.table), zap.String("op", string(op)),
				zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// GetByID returns one record. A client-reported failure notifies and
// returns an error wrapping ErrNotFound; transport errors pass through.
func (e *Entity[T]) GetByID(ctx context.Context, id int) (*T, error) {
	resp, err := e.deps.Client.GetRecordByID(ctx, e.cfg.table, id, e.query())
	if err != nil {
		e.logFailure(OpGetByID, err.Error(), zap.Int("id", id))
		return nil, err
	}
	if !resp.Success {
		e.logFailure(OpGetByID, resp.Message, zap.Int("id", id))
		e.notifyClient(OpGetByID, resp.Message)
		return nil, fmt.Errorf("%s %w", e.cfg.noun, ErrNotFound)
	}

	var v T
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, fmt.Errorf("%s %d: %w", strings.ToLower(e.cfg.noun), id, ErrNoResult)
	}
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		return nil, fmt.Errorf("decode %s %d: %w", strings.ToLower(e.cfg.noun), id, err)
	}
	return &v, nil
}

// Create builds a payload from in with the create shape and submits it.
func (e *Entity[T]) Create(ctx context.Context, in payload.Input) (*T, error) {
	rec := e.cfg.create.Build(in, e.deps.Now())
	return e.write(ctx, OpCreate, rec)
}

// Update builds a payload from in with the update shape, injects id, and
// submits it.
func (e *Entity[T]) Update(ctx context.Context, id int, in payload.Input) (*T, error) {
	rec := e.cfg.update.Build(in, e.deps.Now())
	rec["Id"] = id
	return e.write(ctx, OpUpdate, rec)
}

// write submits a one-record batch and returns the resulting record.
func (e *Entity[T]) write(ctx context.Context, op Op, rec map[string]any) (*T, error) {
	id, _ := rec["Id"].(int)
	req := record.BatchRequest{Records: []map[string]any{rec}}

	var resp *record.BatchResponse
	var err error
	if op == OpCreate {
		resp, err = e.deps.Client.CreateRecord(ctx, e.cfg.table, req)
	} else {
		resp, err = e.deps.Client.UpdateRecord(ctx, e.cfg.table, req)
	}
	if err != nil {
		e.logFailure(op, err.Error(), zap.Int("id", id))
		if PolicyFor(op).RaiseTransport {
			return nil, err
		}
		return nil, &WriteError{Op: op, Noun: e.cfg.noun, Message: err.Error()}
	}
	if !resp.Success {
		e.logFailure(op, resp.Message, zap.Int("id", id))
		e.notifyClient(op, resp.Message)
		return nil, &WriteError{Op: op, Noun: e.cfg.noun, Message: resp.Message}
	}

	data := resp.Data
	if resp.Results != nil {
		_, failed := partition(resp.Results)
		if len(failed) > 0 {
			e.logFailure(op, joinMessages(failed), zap.Int("id", id), zap.Int("failed", len(failed)))
			e.notifyRecords(op, failed)
			return nil, &WriteError{Op: op, Noun: e.cfg.noun, Failed: failed}
		}
		if len(resp.Results) == 0 {
			return nil, fmt.Errorf("%s %s: %w", op, e.cfg.table, ErrNoResult)
		}
		data = resp.Results[0].Data
	}

	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%s %s: %w", op, e.cfg.table, ErrNoResult)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", strings.ToLower(e.cfg.noun), err)
	}
	return &v, nil
}

// Delete removes one record and reports whether it is gone. It never
// errors; every failure path notifies and returns false.
func (e *Entity[T]) Delete(ctx context.Context, id int) bool {
	resp, err := e.deps.Client.DeleteRecord(ctx, e.cfg.table, record.DeleteRequest{RecordIDs: []int{id}})
	if err != nil {
		e.logFailure(OpDelete, err.Error(), zap.Int("id", id))
		e.notifyTransport(OpDelete)
		return false
	}
	if !resp.Success {
		e.logFailure(OpDelete, resp.Message, zap.Int("id", id))
		e.notifyClient(OpDelete, resp.Message)
		return false
	}
	if _, failed := partition(resp.Results); len(failed) > 0 {
		e.logFailure(OpDelete, joinMessages(failed), zap.Int("id", id))
		e.notifyRecords(OpDelete, failed)
		return false
	}
	return true
}

func joinMessages(results []record.Result) string {
	msgs := make([]string, 0, len(results))
	for _, r := range results {
		msgs = append(msgs, r.Message)
	}
	return strings.Join(msgs, "; ")
}
