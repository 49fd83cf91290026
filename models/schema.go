// ABOUTME: CRM table definitions for the local record client
// ABOUTME: Declares lookup fields and display-name sources per table
package models

import "github.com/harperreed/dealdesk/record"

// Schema returns the table layout the local backends enforce.
func Schema() record.Schema {
	return record.Schema{
		TableCompanies: {
			NameFrom: []string{"name_c"},
		},
		TableContacts: {
			Lookups: map[string]record.LookupRule{
				"companyId_c": {Table: TableCompanies, Required: true},
			},
			NameFrom: []string{"firstName_c", "lastName_c"},
		},
		TableDeals: {
			Lookups: map[string]record.LookupRule{
				"contactId_c": {Table: TableContacts},
				"companyId_c": {Table: TableCompanies},
			},
			NameFrom: []string{"title_c"},
		},
		TableActivities: {
			Lookups: map[string]record.LookupRule{
				"contactId_c": {Table: TableContacts},
				"dealId_c":    {Table: TableDeals},
			},
			NameFrom: []string{"subject_c"},
		},
	}
}
