package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errTransport = errors.New("connection reset")

func seedCompany(t *testing.T, env *testEnv, name string) *models.Company {
	t.Helper()
	company, err := env.companies.Create(context.Background(), payload.Input{
		"name_c": name, "industry_c": "Software", "size_c": "50-200",
	})
	require.NoError(t, err)
	return company
}

func seedContact(t *testing.T, env *testEnv, first string, companyID int) *models.Contact {
	t.Helper()
	contact, err := env.contacts.Create(context.Background(), payload.Input{
		"firstName_c": first, "lastName_c": "Tester", "email_c": first + "@example.com", "companyId_c": companyID,
	})
	require.NoError(t, err)
	return contact
}

func TestContactCreateThenGetByID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	company := seedCompany(t, env, "Acme")

	created, err := env.contacts.Create(ctx, payload.Input{
		"firstName_c": "Ada",
		"lastName_c":  "Lovelace",
		"email_c":     "ada@example.com",
		"phone_c":     "555-0100",
		"title_c":     "CTO",
		"companyId_c": "  " + jsonNumber(company.ID),
		"ignored_c":   "dropped",
	})
	require.NoError(t, err)

	got, err := env.contacts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, "CTO", got.Title)
	assert.Equal(t, "", got.Notes)
	assert.Equal(t, "2024-03-09T12:00:00.000Z", got.CreatedAt)
	assert.Equal(t, "2024-03-09T12:00:00.000Z", got.UpdatedAt)
	require.NotNil(t, got.Company)
	assert.Equal(t, company.ID, got.Company.ID)
	assert.Equal(t, "Acme", got.Company.Name)
	assert.Equal(t, "Ada Lovelace", got.Name)

	require.Len(t, env.client.creates, 2)
	assert.NotContains(t, env.client.creates[1].Records[0], "ignored_c")
	assert.Empty(t, env.notes.Messages())
}

func jsonNumber(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestEveryEntityRoundTrips(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	company := seedCompany(t, env, "Globex")
	contact := seedContact(t, env, "Hank", company.ID)

	deal, err := env.deals.Create(ctx, payload.Input{
		"title_c": "Renewal", "value_c": "12500.50", "stage_c": models.StageProposal,
		"probability_c": "60", "closeDate_c": "2024-06-30",
		"contactId_c": contact.ID, "companyId_c": company.ID,
	})
	require.NoError(t, err)
	gotDeal, err := env.deals.GetByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 12500.5, gotDeal.Value)
	assert.Equal(t, 60, gotDeal.Probability)
	assert.Equal(t, models.StageProposal, gotDeal.Stage)
	assert.Equal(t, "Hank Tester", gotDeal.Contact.Name)
	assert.Equal(t, "Globex", gotDeal.Company.Name)

	act, err := env.acts.Create(ctx, payload.Input{
		"type_c": models.ActivityCall, "subject_c": "Kickoff", "description_c": "Intro call",
		"dueDate_c": "2024-03-10T09:00:00Z", "dealId_c": jsonNumber(deal.ID),
	})
	require.NoError(t, err)
	gotAct, err := env.acts.GetByID(ctx, act.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kickoff", gotAct.Subject)
	assert.False(t, gotAct.Completed)
	assert.Nil(t, gotAct.Contact)
	require.NotNil(t, gotAct.Deal)
	assert.Equal(t, deal.ID, gotAct.Deal.ID)
	assert.NotContains(t, env.client.creates[3].Records[0], "contactId_c")

	gotCompany, err := env.companies.GetByID(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", gotCompany.CompanyName)
	assert.Equal(t, "", gotCompany.Website)
}

func TestGetAllClientFailureNotifiesAndReturnsEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.client.fetch = func(string, record.Query) (*record.Response, error) {
		return &record.Response{Message: "Table is locked"}, nil
	}

	got := env.contacts.GetAll(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []string{"Table is locked"}, env.notes.Messages())
}

func TestGetAllTransportErrorNotifiesGenericMessage(t *testing.T) {
	env := newTestEnv(t)
	env.client.fetch = func(string, record.Query) (*record.Response, error) { return nil, errTransport }

	assert.Empty(t, env.deals.GetAll(context.Background()))
	assert.Equal(t, []string{"Failed to load deals"}, env.notes.Messages())
}

func TestGetAllSkipsRecordsThatDoNotDecode(t *testing.T) {
	env := newTestEnv(t)
	core, logs := observer.New(zap.WarnLevel)
	env.deps.Logger = zap.New(core)
	deals := NewDeals(env.deps)
	env.client.fetch = func(string, record.Query) (*record.Response, error) {
		return &record.Response{Success: true, Data: json.RawMessage(`[
			{"Id": 1, "title_c": "Good", "stage_c": "Lead", "probability_c": 10},
			{"Id": 2, "title_c": "Fractional", "stage_c": "Lead", "probability_c": 55.5},
			{"Id": 3, "title_c": "Also good", "stage_c": "Proposal", "probability_c": 50}
		]`)}, nil
	}

	got := deals.GetAll(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
	assert.Empty(t, env.notes.Messages())

	entries := logs.FilterMessage("skipping undecodable record").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["index"])

	byStage := deals.GetDealsByStage(context.Background())
	assert.Len(t, byStage[models.StageLead], 1)
	assert.Len(t, byStage[models.StageProposal], 1)
}

func TestGetAllNonArrayDataNotifies(t *testing.T) {
	env := newTestEnv(t)
	env.client.fetch = func(string, record.Query) (*record.Response, error) {
		return &record.Response{Success: true, Data: json.RawMessage(`{"Id": 1}`)}, nil
	}

	assert.Empty(t, env.deals.GetAll(context.Background()))
	assert.Equal(t, []string{"Failed to load deals"}, env.notes.Messages())
}

func TestGetAllRequestsDeclaredFields(t *testing.T) {
	env := newTestEnv(t)
	env.contacts.GetAll(context.Background())

	require.Len(t, env.client.queries, 1)
	q := env.client.queries[0]
	assert.Equal(t, contactFields, q.Fields)
	last := q.Fields[len(q.Fields)-1]
	assert.Equal(t, "companyId_c", last.Field.Name)
	assert.NotNil(t, last.ReferenceField)
}

func TestGetByIDClientFailureIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.contacts.GetByID(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Contact not found", err.Error())
	assert.Equal(t, []string{"Record with Id 404 not found"}, env.notes.Messages())
}

func TestGetByIDTransportErrorPassesThrough(t *testing.T) {
	env := newTestEnv(t)
	env.client.get = func(string, int) (*record.Response, error) { return nil, errTransport }

	_, err := env.companies.GetByID(context.Background(), 1)
	assert.Same(t, errTransport, err)
	assert.Empty(t, env.notes.Messages())
}

func TestCreatePerRecordFailureRaisesAndNotifies(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.contacts.Create(context.Background(), payload.Input{"firstName_c": "Orphan"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, OpCreate, we.Op)
	require.Len(t, we.Failed, 1)
	assert.Equal(t, []string{"companyId_c is required"}, env.notes.Messages())
	assert.Contains(t, err.Error(), "failed to create contact")
}

func TestCreateSkipsEmptyFailureMessages(t *testing.T) {
	env := newTestEnv(t)
	env.client.create = func(string, record.BatchRequest) (*record.BatchResponse, error) {
		return &record.BatchResponse{Success: true, Results: []record.Result{{Success: false}, {Success: false, Message: "bad"}}}, nil
	}

	_, err := env.companies.Create(context.Background(), payload.Input{"name_c": "X"})
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Len(t, we.Failed, 2)
	assert.Equal(t, []string{"bad"}, env.notes.Messages())
}

func TestCreateClientFailure(t *testing.T) {
	env := newTestEnv(t)
	env.client.create = func(string, record.BatchRequest) (*record.BatchResponse, error) {
		return &record.BatchResponse{Message: "Quota exceeded"}, nil
	}

	_, err := env.companies.Create(context.Background(), payload.Input{"name_c": "X"})
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "Quota exceeded", we.Message)
	assert.Equal(t, []string{"Quota exceeded"}, env.notes.Messages())
}

func TestCreateTransportErrorPassesThrough(t *testing.T) {
	env := newTestEnv(t)
	env.client.create = func(string, record.BatchRequest) (*record.BatchResponse, error) { return nil, errTransport }

	_, err := env.companies.Create(context.Background(), payload.Input{"name_c": "X"})
	assert.Same(t, errTransport, err)
	assert.Empty(t, env.notes.Messages())
}

func TestCreateUsesTopLevelDataWithoutResults(t *testing.T) {
	env := newTestEnv(t)
	env.client.create = func(string, record.BatchRequest) (*record.BatchResponse, error) {
		return &record.BatchResponse{Success: true, Data: json.RawMessage(`{"Id": 7, "name_c": "Initech"}`)}, nil
	}

	got, err := env.companies.Create(context.Background(), payload.Input{"name_c": "Initech"})
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, "Initech", got.CompanyName)
}

func TestCreateEmptyResultsIsNoResult(t *testing.T) {
	env := newTestEnv(t)
	env.client.create = func(string, record.BatchRequest) (*record.BatchResponse, error) {
		return &record.BatchResponse{Success: true, Results: []record.Result{}}, nil
	}

	_, err := env.companies.Create(context.Background(), payload.Input{"name_c": "Initech"})
	assert.ErrorIs(t, err, ErrNoResult)
	assert.Empty(t, env.notes.Messages())
}

func TestContactUpdatePayload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	company := seedCompany(t, env, "Acme")
	contact := seedContact(t, env, "Ada", company.ID)

	_, err := env.contacts.Update(ctx, contact.ID, payload.Input{
		"firstName_c": "Ada", "lastName_c": "King", "companyId_c": company.ID,
	})
	require.NoError(t, err)

	require.Len(t, env.client.updates, 1)
	rec := env.client.updates[0].Records[0]
	assert.Equal(t, contact.ID, rec["Id"])
	assert.Equal(t, "2024-03-09T12:00:00.000Z", rec["updatedAt_c"])
	assert.NotContains(t, rec, "createdAt_c")
	assert.Equal(t, "", rec["notes_c"])
}

func TestUpdateOnlyContactStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	company := seedCompany(t, env, "Acme")

	_, err := env.companies.Update(ctx, company.ID, payload.Input{"name_c": "Acme Corp"})
	require.NoError(t, err)

	rec := env.client.updates[0].Records[0]
	assert.NotContains(t, rec, "updatedAt_c")
	assert.NotContains(t, rec, "createdAt_c")
	assert.Equal(t, company.ID, rec["Id"])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	company := seedCompany(t, env, "Acme")

	assert.True(t, env.companies.Delete(ctx, company.ID))
	assert.Empty(t, env.notes.Messages())

	assert.False(t, env.companies.Delete(ctx, company.ID))
	assert.Equal(t, []string{"Record with Id 1 not found"}, env.notes.Drain())
}

func TestDeleteNeverErrors(t *testing.T) {
	env := newTestEnv(t)

	env.client.del = func(string, record.DeleteRequest) (*record.BatchResponse, error) { return nil, errTransport }
	assert.False(t, env.contacts.Delete(context.Background(), 3))
	assert.Equal(t, []string{"Failed to delete contact"}, env.notes.Drain())

	env.client.del = func(string, record.DeleteRequest) (*record.BatchResponse, error) {
		return &record.BatchResponse{Message: "Permission denied"}, nil
	}
	assert.False(t, env.contacts.Delete(context.Background(), 3))
	assert.Equal(t, []string{"Permission denied"}, env.notes.Drain())

	env.client.del = func(string, record.DeleteRequest) (*record.BatchResponse, error) {
		return &record.BatchResponse{Success: true}, nil
	}
	assert.True(t, env.contacts.Delete(context.Background(), 3))
}

func TestCreateDoesNotValidateEnumerations(t *testing.T) {
	env := newTestEnv(t)

	deal, err := env.deals.Create(context.Background(), payload.Input{"title_c": "Odd", "stage_c": "Daydream"})
	require.NoError(t, err)
	assert.Equal(t, "Daydream", deal.Stage)

	act, err := env.acts.Create(context.Background(), payload.Input{"type_c": "Carrier Pigeon", "subject_c": "coo"})
	require.NoError(t, err)
	assert.Equal(t, "Carrier Pigeon", act.Type)
}
