// ABOUTME: Contact service with bulk update, bulk delete, and CSV export
// ABOUTME: Bulk operations aggregate per-record failures instead of raising them
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/dealdesk/export"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/record"
	"go.uber.org/zap"
)

var contactFields = []record.Field{
	record.Plain("Name"),
	record.Plain("firstName_c"),
	record.Plain("lastName_c"),
	record.Plain("email_c"),
	record.Plain("phone_c"),
	record.Plain("title_c"),
	record.Plain("notes_c"),
	record.Plain("createdAt_c"),
	record.Plain("updatedAt_c"),
	record.Lookup("companyId_c"),
}

var contactCreate = payload.Shape{
	{Name: "firstName_c"},
	{Name: "lastName_c"},
	{Name: "email_c"},
	{Name: "phone_c"},
	{Name: "title_c"},
	{Name: "companyId_c", Coerce: payload.Integer},
	{Name: "notes_c", Default: ""},
	{Name: "createdAt_c", Stamp: true},
	{Name: "updatedAt_c", Stamp: true},
}

var contactUpdate = payload.Shape{
	{Name: "firstName_c"},
	{Name: "lastName_c"},
	{Name: "email_c"},
	{Name: "phone_c"},
	{Name: "title_c"},
	{Name: "companyId_c", Coerce: payload.Integer},
	{Name: "notes_c", Default: ""},
	{Name: "updatedAt_c", Stamp: true},
}

// Contacts is the contact service.
type Contacts struct {
	*Entity[models.Contact]
	sink export.Sink
}

// NewContacts builds the contact service. sink receives BulkExport files.
func NewContacts(deps Deps, sink export.Sink) *Contacts {
	return &Contacts{
		Entity: newEntity[models.Contact](deps, entityConfig{
			table:  models.TableContacts,
			noun:   "Contact",
			plural: "contacts",
			fields: contactFields,
			create: contactCreate,
			update: contactUpdate,
		}),
		sink: sink,
	}
}

// BulkUpdateResult summarizes a bulk update.
type BulkUpdateResult struct {
	Updated      []models.Contact `json:"updated"`
	Errors       []BulkError      `json:"errors"`
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
}

// BulkDeleteResult summarizes a bulk delete. Deleted lists removed ids.
type BulkDeleteResult struct {
	Deleted      []int       `json:"deleted"`
	Errors       []BulkError `json:"errors"`
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
}

// BulkUpdate applies patch to every id in one batch. A client-level
// failure counts every id as an error without per-id detail.
func (c *Contacts) BulkUpdate(ctx context.Context, ids []int, patch payload.Input) BulkUpdateResult {
	stamp := models.FormatTimestamp(c.deps.Now())
	records := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		rec := map[string]any{"Id": id}
		for k, v := range patch {
			rec[k] = v
		}
		rec["updatedAt_c"] = stamp
		records = append(records, rec)
	}

	allFailed := BulkUpdateResult{Updated: []models.Contact{}, Errors: []BulkError{}, ErrorCount: len(ids)}

	resp, err := c.deps.Client.UpdateRecord(ctx, c.cfg.table, record.BatchRequest{Records: records})
	succeeded, failed, ok := c.bulkOutcome(OpBulkUpdate, ids, resp, err)
	if !ok {
		return allFailed
	}

	updated := make([]models.Contact, 0, len(succeeded))
	for _, s := range succeeded {
		contact := models.Contact{ID: s.id}
		if len(s.result.Data) > 0 {
			if err := json.Unmarshal(s.result.Data, &contact); err != nil {
				c.logFailure(OpBulkUpdate, err.Error(), zap.Int("id", s.id))
			}
		}
		updated = append(updated, contact)
	}

	return BulkUpdateResult{
		Updated:      updated,
		Errors:       bulkErrors(failed),
		SuccessCount: len(succeeded),
		ErrorCount:   len(failed),
	}
}

// BulkDelete removes every id in one batch.
func (c *Contacts) BulkDelete(ctx context.Context, ids []int) BulkDeleteResult {
	allFailed := BulkDeleteResult{Deleted: []int{}, Errors: []BulkError{}, ErrorCount: len(ids)}

	resp, err := c.deps.Client.DeleteRecord(ctx, c.cfg.table, record.DeleteRequest{RecordIDs: ids})
	succeeded, failed, ok := c.bulkOutcome(OpBulkDelete, ids, resp, err)
	if !ok {
		return allFailed
	}

	deleted := make([]int, 0, len(succeeded))
	for _, s := range succeeded {
		deleted = append(deleted, s.id)
	}
	return BulkDeleteResult{
		Deleted:      deleted,
		Errors:       bulkErrors(failed),
		SuccessCount: len(succeeded),
		ErrorCount:   len(failed),
	}
}

// bulkOutcome applies op's policy to a batch response. ok is false when the
// whole batch must be reported as failed.
func (c *Contacts) bulkOutcome(op Op, ids []int, resp *record.BatchResponse, err error) (succeeded, failed []attributed, ok bool) {
	if err != nil {
		c.logFailure(op, err.Error(), zap.Ints("ids", ids))
		c.notifyTransport(op)
		return nil, nil, false
	}
	if !resp.Success {
		c.logFailure(op, resp.Message, zap.Ints("ids", ids))
		c.notifyClient(op, resp.Message)
		return nil, nil, false
	}
	if resp.Results == nil {
		c.logFailure(op, "response carried no results", zap.Ints("ids", ids))
		return nil, nil, false
	}

	succeeded, failed = attribute(resp.Results, ids)
	if len(failed) > 0 {
		c.logFailure(op, fmt.Sprintf("%d of %d records failed", len(failed), len(resp.Results)), zap.Ints("ids", ids))
		c.notifyRecords(op, failedResults(failed))
	}
	return succeeded, failed, true
}

// ExportResult describes a finished contact export.
type ExportResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Count    int    `json:"count"`
	Location string `json:"location,omitempty"`
}

// ExportFilename is the download name for an export made at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("contacts_export_%s.csv", now.UTC().Format("2006-01-02"))
}

// BulkExport renders contacts as CSV and hands the file to the export sink.
func (c *Contacts) BulkExport(ctx context.Context, contacts []models.Contact) (ExportResult, error) {
	if c.sink == nil {
		return ExportResult{}, errors.New("no export sink configured")
	}

	name := ExportFilename(c.deps.Now())
	loc, err := c.sink.Save(ctx, name, []byte(ContactsCSV(contacts)), "text/csv;charset=utf-8")
	if err != nil {
		c.logFailure(OpExport, err.Error(), zap.String("filename", name))
		return ExportResult{}, fmt.Errorf("export contacts: %w", err)
	}

	return ExportResult{Success: true, Filename: name, Count: len(contacts), Location: loc}, nil
}
