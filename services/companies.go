// ABOUTME: Company service with free-text search
// ABOUTME: Search matches name, industry, or size on the record platform
package services

import (
	"context"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/payload"
	"github.com/harperreed/dealdesk/record"
)

var companyFields = []record.Field{
	record.Plain("Name"),
	record.Plain("name_c"),
	record.Plain("industry_c"),
	record.Plain("size_c"),
	record.Plain("website_c"),
	record.Plain("address_c"),
	record.Plain("notes_c"),
	record.Plain("createdAt_c"),
}

var companyCreate = payload.Shape{
	{Name: "name_c"},
	{Name: "industry_c"},
	{Name: "size_c"},
	{Name: "website_c", Default: ""},
	{Name: "address_c", Default: ""},
	{Name: "notes_c", Default: ""},
	{Name: "createdAt_c", Stamp: true},
}

var companyUpdate = payload.Shape{
	{Name: "name_c"},
	{Name: "industry_c"},
	{Name: "size_c"},
	{Name: "website_c", Default: ""},
	{Name: "address_c", Default: ""},
	{Name: "notes_c", Default: ""},
}

// searchFields are matched by Search.
var searchFields = []string{"name_c", "industry_c", "size_c"}

// Companies is the company service.
type Companies struct {
	*Entity[models.Company]
}

func NewCompanies(deps Deps) *Companies {
	return &Companies{
		Entity: newEntity[models.Company](deps, entityConfig{
			table:  models.TableCompanies,
			noun:   "Company",
			plural: "companies",
			fields: companyFields,
			create: companyCreate,
			update: companyUpdate,
		}),
	}
}

// Search returns companies whose name, industry, or size contains query.
// An empty query returns everything. Failures yield an empty slice silently.
func (c *Companies) Search(ctx context.Context, query string) []models.Company {
	if query == "" {
		return c.GetAll(ctx)
	}

	groups := make([]record.SubGroup, 0, len(searchFields))
	for _, f := range searchFields {
		groups = append(groups, record.SubGroup{Conditions: []record.GroupCondition{
			{FieldName: f, Operator: record.OpContains, Values: []any{query}},
		}})
	}
	return c.fetch(ctx, OpSearch, record.Query{
		Fields:      companyFields,
		WhereGroups: &record.WhereGroup{Operator: record.GroupOr, SubGroups: groups},
	})
}
