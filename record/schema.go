// ABOUTME: Table definitions the local record client enforces
// ABOUTME: Declares lookup fields, their targets, and how display names derive
package record

import "strings"

// LookupRule describes a reference field.
type LookupRule struct {
	Table    string
	Required bool
}

// TableSchema describes one table.
type TableSchema struct {
	// Lookups maps reference field names to their target tables.
	Lookups map[string]LookupRule
	// NameFrom lists the fields joined to form Name when a row has none.
	NameFrom []string
}

// Schema maps table names to their definitions.
type Schema map[string]TableSchema

func (s TableSchema) displayName(fields map[string]any) string {
	if name, ok := fields["Name"].(string); ok && name != "" {
		return name
	}
	parts := make([]string, 0, len(s.NameFrom))
	for _, f := range s.NameFrom {
		if v := strings.TrimSpace(text(fields[f])); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
