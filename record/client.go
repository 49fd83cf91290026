// ABOUTME: Record platform client contract and wire types
// ABOUTME: Shared by the hosted REST client and the local store-backed client
package record

import (
	"context"
	"encoding/json"
)

// Client is the record platform surface the entity services consume.
// A non-nil error means the call itself failed (transport, encoding);
// platform-reported failures come back as Success == false.
type Client interface {
	FetchRecords(ctx context.Context, table string, query Query) (*Response, error)
	GetRecordByID(ctx context.Context, table string, id int, query Query) (*Response, error)
	CreateRecord(ctx context.Context, table string, req BatchRequest) (*BatchResponse, error)
	UpdateRecord(ctx context.Context, table string, req BatchRequest) (*BatchResponse, error)
	DeleteRecord(ctx context.Context, table string, req DeleteRequest) (*BatchResponse, error)
}

// FieldName names a column in a field selector.
type FieldName struct {
	Name string `json:"Name"`
}

// ReferenceField asks the platform to expand a lookup into {Id, Name}.
type ReferenceField struct {
	Field FieldName `json:"field"`
}

// Field is one entry of a query's field list.
type Field struct {
	Field          FieldName       `json:"field"`
	ReferenceField *ReferenceField `json:"referenceField,omitempty"`
}

// Plain selects a scalar field.
func Plain(name string) Field {
	return Field{Field: FieldName{Name: name}}
}

// Lookup selects a reference field expanded to its target's Name.
func Lookup(name string) Field {
	return Field{
		Field:          FieldName{Name: name},
		ReferenceField: &ReferenceField{Field: FieldName{Name: "Name"}},
	}
}

// Condition is a top-level where clause entry. All conditions must hold.
type Condition struct {
	FieldName string `json:"FieldName"`
	Operator  string `json:"Operator"`
	Values    []any  `json:"Values"`
}

// GroupCondition is a condition inside a where group.
type GroupCondition struct {
	FieldName string `json:"fieldName"`
	Operator  string `json:"operator"`
	Values    []any  `json:"values"`
}

// SubGroup combines its conditions with Operator (AND when empty).
type SubGroup struct {
	Operator   string           `json:"operator,omitempty"`
	Conditions []GroupCondition `json:"conditions"`
}

// WhereGroup combines sub-groups with Operator (AND or OR).
type WhereGroup struct {
	Operator  string     `json:"operator"`
	SubGroups []SubGroup `json:"subGroups"`
}

// Query selects fields and optionally filters rows.
type Query struct {
	Fields      []Field     `json:"fields"`
	Where       []Condition `json:"where,omitempty"`
	WhereGroups *WhereGroup `json:"whereGroups,omitempty"`
}

// Operators understood by the platform.
const (
	OpEqualTo              = "EqualTo"
	OpNotEqualTo           = "NotEqualTo"
	OpContains             = "Contains"
	OpDoesNotContain       = "DoesNotContain"
	OpStartsWith           = "StartsWith"
	OpGreaterThan          = "GreaterThan"
	OpGreaterThanOrEqualTo = "GreaterThanOrEqualTo"
	OpLessThan             = "LessThan"
	OpLessThanOrEqualTo    = "LessThanOrEqualTo"
)

// Group operators.
const (
	GroupAnd = "AND"
	GroupOr  = "OR"
)

// Response is the result of a read.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// BatchRequest carries records for create and update calls.
type BatchRequest struct {
	Records []map[string]any `json:"records"`
}

// DeleteRequest lists the records to remove.
type DeleteRequest struct {
	RecordIDs []int `json:"RecordIds"`
}

// Result is the per-record outcome inside a batch response.
type Result struct {
	ID      int             `json:"Id,omitempty"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// BatchResponse is the result of a create, update, or delete.
type BatchResponse struct {
	Success bool            `json:"success"`
	Results []Result        `json:"results,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}
