// ABOUTME: Data models for CRM entities stored on the record platform
// ABOUTME: Defines Activity, Company, Contact, Deal and the Reference lookup type
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Table names on the record platform.
const (
	TableActivities = "activity_c"
	TableCompanies  = "company_c"
	TableContacts   = "contact_c"
	TableDeals      = "deal_c"
)

// Reference is a lookup field. Reads return either a bare record ID or an
// expanded {"Id": n, "Name": "..."} object; both decode into Reference.
type Reference struct {
	ID   int    `json:"Id"`
	Name string `json:"Name,omitempty"`
}

// UnmarshalJSON accepts null, a number, a numeric string, or a lookup object.
func (r *Reference) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Reference{}
		return nil
	}

	switch data[0] {
	case '{':
		var obj struct {
			ID   json.Number `json:"Id"`
			Name string      `json:"Name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		id, err := numberToInt(obj.ID)
		if err != nil {
			return fmt.Errorf("invalid reference id: %w", err)
		}
		*r = Reference{ID: id, Name: obj.Name}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*r = Reference{}
			return nil
		}
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid reference id %q: %w", s, err)
		}
		*r = Reference{ID: id}
		return nil
	default:
		id, err := numberToInt(json.Number(data))
		if err != nil {
			return fmt.Errorf("invalid reference id: %w", err)
		}
		*r = Reference{ID: id}
		return nil
	}
}

func numberToInt(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// IsSet reports whether the reference points at a record.
func (r *Reference) IsSet() bool {
	return r != nil && r.ID != 0
}

type Activity struct {
	ID          int        `json:"Id"`
	Name        string     `json:"Name,omitempty"`
	Type        string     `json:"type_c,omitempty"`
	Subject     string     `json:"subject_c,omitempty"`
	Description string     `json:"description_c,omitempty"`
	DueDate     string     `json:"dueDate_c,omitempty"`
	Completed   bool       `json:"completed_c"`
	CreatedAt   string     `json:"createdAt_c,omitempty"`
	Contact     *Reference `json:"contactId_c,omitempty"`
	Deal        *Reference `json:"dealId_c,omitempty"`
}

// Due parses the activity due date. The second result is false when the
// date is empty or in an unrecognised format.
func (a Activity) Due() (time.Time, bool) {
	return ParseTimestamp(a.DueDate)
}

type Company struct {
	ID          int    `json:"Id"`
	Name        string `json:"Name,omitempty"`
	CompanyName string `json:"name_c,omitempty"`
	Industry    string `json:"industry_c,omitempty"`
	Size        string `json:"size_c,omitempty"`
	Website     string `json:"website_c,omitempty"`
	Address     string `json:"address_c,omitempty"`
	Notes       string `json:"notes_c,omitempty"`
	CreatedAt   string `json:"createdAt_c,omitempty"`
}

type Contact struct {
	ID        int        `json:"Id"`
	Name      string     `json:"Name,omitempty"`
	FirstName string     `json:"firstName_c,omitempty"`
	LastName  string     `json:"lastName_c,omitempty"`
	Email     string     `json:"email_c,omitempty"`
	Phone     string     `json:"phone_c,omitempty"`
	Title     string     `json:"title_c,omitempty"`
	Notes     string     `json:"notes_c,omitempty"`
	CreatedAt string     `json:"createdAt_c,omitempty"`
	UpdatedAt string     `json:"updatedAt_c,omitempty"`
	Company   *Reference `json:"companyId_c,omitempty"`
}

// FullName joins first and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CompanyName returns the expanded company lookup name, if any.
func (c Contact) CompanyName() string {
	if c.Company == nil {
		return ""
	}
	return c.Company.Name
}

type Deal struct {
	ID          int        `json:"Id"`
	Name        string     `json:"Name,omitempty"`
	Title       string     `json:"title_c,omitempty"`
	Value       float64    `json:"value_c"`
	Stage       string     `json:"stage_c,omitempty"`
	Probability int        `json:"probability_c"`
	CloseDate   string     `json:"closeDate_c,omitempty"`
	Notes       string     `json:"notes_c,omitempty"`
	CreatedAt   string     `json:"createdAt_c,omitempty"`
	Contact     *Reference `json:"contactId_c,omitempty"`
	Company     *Reference `json:"companyId_c,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the date formats the record platform emits.
// Date-only and zone-less values are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way the platform stores timestamps
// (UTC, millisecond precision, trailing Z).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
