// ABOUTME: Declarative field shapes that turn loose caller input into record payloads
// ABOUTME: Applies verbatim copy, numeric coercion, defaults, and timestamps per field
package payload

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
)

// Input is caller-supplied form data keyed by wire field name.
type Input map[string]any

// Coerce selects how a field's value is converted.
type Coerce int

const (
	// Verbatim copies the value when the key is present.
	Verbatim Coerce = iota
	// Integer parses a leading integer; failures become null.
	Integer
	// Float parses a leading decimal number; failures become null.
	Float
)

// Field describes one payload key.
type Field struct {
	Name   string
	Coerce Coerce
	// Optional attaches a coerced field only when the input value is truthy.
	Optional bool
	// Default replaces a falsy input value.
	Default any
	// Stamp sets the field to the build time.
	Stamp bool
}

// Shape is the ordered field list for one entity operation.
type Shape []Field

// Build applies the shape to in. Keys not named by the shape are dropped.
func (s Shape) Build(in Input, now time.Time) map[string]any {
	out := make(map[string]any, len(s))
	for _, f := range s {
		if f.Stamp {
			out[f.Name] = models.FormatTimestamp(now)
			continue
		}

		v, present := in[f.Name]
		if f.Default != nil && !Truthy(v) {
			out[f.Name] = f.Default
			continue
		}

		switch f.Coerce {
		case Integer, Float:
			if f.Optional && !Truthy(v) {
				continue
			}
			if f.Coerce == Integer {
				n, ok := ParseInt(v)
				out[f.Name] = nullable(n, ok)
			} else {
				n, ok := ParseFloat(v)
				out[f.Name] = nullable(n, ok)
			}
		default:
			if present {
				out[f.Name] = v
			}
		}
	}
	return out
}

func nullable[T int | float64](v T, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// Truthy reports whether v counts as set: not nil, false, zero, NaN, or "".
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	case json.Number:
		return x != "" && x != "0"
	}
	return true
}

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingHex   = regexp.MustCompile(`^([+-]?)0[xX]([0-9a-fA-F]+)`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ParseInt reads a leading integer the way form fields are read: surrounding
// whitespace is ignored, trailing garbage is dropped, numbers are truncated.
func ParseInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int(x), true
	case json.Number:
		return ParseInt(string(x))
	case string:
		s := strings.TrimSpace(x)
		if m := leadingHex.FindStringSubmatch(s); m != nil {
			n, err := strconv.ParseInt(m[2], 16, 64)
			if err != nil {
				return 0, false
			}
			if m[1] == "-" {
				n = -n
			}
			return int(n), true
		}
		m := leadingInt.FindString(s)
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		return n, err == nil
	}
	return 0, false
}

// ParseFloat reads a leading decimal number, ignoring trailing garbage.
func ParseFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case json.Number:
		return ParseFloat(string(x))
	case string:
		m := leadingFloat.FindString(strings.TrimSpace(x))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	}
	return 0, false
}
