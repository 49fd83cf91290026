package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/notify"
	"github.com/harperreed/dealdesk/record"
)

var fixedNow = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

// countingClient records every call and either answers from a scripted
// function or forwards to a local client.
type countingClient struct {
	mu    sync.Mutex
	next  record.Client
	calls int

	fetch  func(table string, q record.Query) (*record.Response, error)
	get    func(table string, id int) (*record.Response, error)
	create func(table string, req record.BatchRequest) (*record.BatchResponse, error)
	update func(table string, req record.BatchRequest) (*record.BatchResponse, error)
	del    func(table string, req record.DeleteRequest) (*record.BatchResponse, error)

	queries []record.Query
	creates []record.BatchRequest
	updates []record.BatchRequest
	deletes []record.DeleteRequest
}

func (c *countingClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *countingClient) FetchRecords(ctx context.Context, table string, q record.Query) (*record.Response, error) {
	c.mu.Lock()
	c.calls++
	c.queries = append(c.queries, q)
	c.mu.Unlock()
	if c.fetch != nil {
		return c.fetch(table, q)
	}
	return c.next.FetchRecords(ctx, table, q)
}

func (c *countingClient) GetRecordByID(ctx context.Context, table string, id int, q record.Query) (*record.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.get != nil {
		return c.get(table, id)
	}
	return c.next.GetRecordByID(ctx, table, id, q)
}

func (c *countingClient) CreateRecord(ctx context.Context, table string, req record.BatchRequest) (*record.BatchResponse, error) {
	c.mu.Lock()
	c.calls++
	c.creates = append(c.creates, req)
	c.mu.Unlock()
	if c.create != nil {
		return c.create(table, req)
	}
	return c.next.CreateRecord(ctx, table, req)
}

func (c *countingClient) UpdateRecord(ctx context.Context, table string, req record.BatchRequest) (*record.BatchResponse, error) {
	c.mu.Lock()
	c.calls++
	c.updates = append(c.updates, req)
	c.mu.Unlock()
	if c.update != nil {
		return c.update(table, req)
	}
	return c.next.UpdateRecord(ctx, table, req)
}

func (c *countingClient) DeleteRecord(ctx context.Context, table string, req record.DeleteRequest) (*record.BatchResponse, error) {
	c.mu.Lock()
	c.calls++
	c.deletes = append(c.deletes, req)
	c.mu.Unlock()
	if c.del != nil {
		return c.del(table, req)
	}
	return c.next.DeleteRecord(ctx, table, req)
}

type testEnv struct {
	client    *countingClient
	notes     *notify.Recorder
	deps      Deps
	contacts  *Contacts
	companies *Companies
	deals     *Deals
	acts      *Activities
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	client := &countingClient{next: record.NewLocal(record.NewMemoryStore(), models.Schema())}
	notes := &notify.Recorder{}
	deps := Deps{Client: client, Notifier: notes, Now: func() time.Time { return fixedNow }}
	return &testEnv{
		client:    client,
		notes:     notes,
		deps:      deps,
		contacts:  NewContacts(deps, nil),
		companies: NewCompanies(deps),
		deals:     NewDeals(deps),
		acts:      NewActivities(deps),
	}
}
