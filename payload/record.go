// ABOUTME: Conversion of fetched records back into editable input
// ABOUTME: Lets partial edits overlay the stored values before an update shape runs
package payload

import (
	"encoding/json"
	"fmt"
	"math"
)

// FromRecord flattens a fetched record into Input. Expanded lookups become
// their id, whole numbers become int, and the platform's Id and Name are
// dropped.
func FromRecord(v any) (Input, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	in := make(Input, len(fields))
	for k, val := range fields {
		if k == "Id" || k == "Name" {
			continue
		}
		if ref, ok := val.(map[string]any); ok {
			val = ref["Id"]
		}
		if f, ok := val.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			val = int(f)
		}
		in[k] = val
	}
	return in, nil
}

// Overlay returns a copy of in with every key of changes applied on top.
func (in Input) Overlay(changes Input) Input {
	out := make(Input, len(in)+len(changes))
	for k, v := range in {
		out[k] = v
	}
	for k, v := range changes {
		out[k] = v
	}
	return out
}
