// ABOUTME: Where-clause evaluation for the local record client
// ABOUTME: Implements the platform's comparison operators over stored field values
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnsupportedOperatorError reports a condition the local client cannot evaluate.
type UnsupportedOperatorError struct {
	Operator string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator: %s", e.Operator)
}

func matchQuery(row Row, q Query) (bool, error) {
	for _, c := range q.Where {
		ok, err := matchCondition(row, c.FieldName, c.Operator, c.Values)
		if err != nil || !ok {
			return false, err
		}
	}
	if q.WhereGroups == nil || len(q.WhereGroups.SubGroups) == 0 {
		return true, nil
	}

	anyMode := strings.EqualFold(q.WhereGroups.Operator, GroupOr)
	for _, sg := range q.WhereGroups.SubGroups {
		ok, err := matchSubGroup(row, sg)
		if err != nil {
			return false, err
		}
		if anyMode && ok {
			return true, nil
		}
		if !anyMode && !ok {
			return false, nil
		}
	}
	return !anyMode, nil
}

func matchSubGroup(row Row, sg SubGroup) (bool, error) {
	anyMode := strings.EqualFold(sg.Operator, GroupOr)
	for _, c := range sg.Conditions {
		ok, err := matchCondition(row, c.FieldName, c.Operator, c.Values)
		if err != nil {
			return false, err
		}
		if anyMode && ok {
			return true, nil
		}
		if !anyMode && !ok {
			return false, nil
		}
	}
	return !anyMode || len(sg.Conditions) == 0, nil
}

func matchCondition(row Row, field, op string, values []any) (bool, error) {
	var stored any
	if field == "Id" {
		stored = row.ID
	} else {
		stored = row.Fields[field]
	}

	switch op {
	case OpEqualTo:
		return anyValue(values, func(v any) bool { return equalValues(stored, v) }), nil
	case OpNotEqualTo:
		return !anyValue(values, func(v any) bool { return equalValues(stored, v) }), nil
	case OpContains:
		return anyValue(values, func(v any) bool { return containsFold(stored, v) }), nil
	case OpDoesNotContain:
		return !anyValue(values, func(v any) bool { return containsFold(stored, v) }), nil
	case OpStartsWith:
		return anyValue(values, func(v any) bool {
			return strings.HasPrefix(strings.ToLower(text(stored)), strings.ToLower(text(v)))
		}), nil
	case OpGreaterThan:
		return anyValue(values, func(v any) bool { return compareValues(stored, v) > 0 }), nil
	case OpGreaterThanOrEqualTo:
		return anyValue(values, func(v any) bool { return compareValues(stored, v) >= 0 }), nil
	case OpLessThan:
		return anyValue(values, func(v any) bool { return compareValues(stored, v) < 0 }), nil
	case OpLessThanOrEqualTo:
		return anyValue(values, func(v any) bool { return compareValues(stored, v) <= 0 }), nil
	}
	return false, &UnsupportedOperatorError{Operator: op}
}

func anyValue(values []any, pred func(any) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
	}
	return text(a) == text(b)
}

func containsFold(stored, v any) bool {
	if stored == nil {
		return false
	}
	return strings.Contains(strings.ToLower(text(stored)), strings.ToLower(text(v)))
}

// compareValues orders numbers numerically, timestamps chronologically,
// and everything else lexically. A nil stored value sorts first.
func compareValues(a, b any) int {
	if a == nil {
		if b == nil {
			return 0
		}
		return -1
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	ta, okA := parseTime(text(a))
	tb, okB := parseTime(text(b))
	if okA && okB {
		return ta.Compare(tb)
	}
	return strings.Compare(text(a), text(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toID converts a stored or submitted identifier to an int.
func toID(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case map[string]any:
		return toID(n["Id"])
	}
	f, ok := number(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
