// ABOUTME: Helpers turning typed tool arguments into service input
// ABOUTME: Only non-empty arguments are copied so updates can overlay stored values
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/payload"
)

type fields struct {
	in payload.Input
}

func newFields() *fields {
	return &fields{in: payload.Input{}}
}

func (f *fields) str(key, v string) *fields {
	if v != "" {
		f.in[key] = v
	}
	return f
}

func (f *fields) num(key string, v float64) *fields {
	if v != 0 {
		f.in[key] = v
	}
	return f
}

func (f *fields) id(key string, v int) *fields {
	if v != 0 {
		f.in[key] = v
	}
	return f
}

func (f *fields) flag(key string, v *bool) *fields {
	if v != nil {
		f.in[key] = *v
	}
	return f
}

// overlay loads the stored record with get and applies changes on top, so a
// partial update keeps fields the caller did not mention.
func overlay[T any](ctx context.Context, id int, get func(context.Context, int) (*T, error), changes payload.Input) (payload.Input, error) {
	current, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	base, err := payload.FromRecord(current)
	if err != nil {
		return nil, fmt.Errorf("failed to read current record: %w", err)
	}
	return base.Overlay(changes), nil
}

func requireID(id int) error {
	if id <= 0 {
		return fmt.Errorf("id is required")
	}
	return nil
}
