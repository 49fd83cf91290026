// ABOUTME: MCP server assembly
// ABOUTME: Registers every tool, prompt, and resource against one application container
package handlers

import (
	"github.com/harperreed/dealdesk/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server exposing c.
func NewServer(c *app.Container, version string) *mcp.Server {
	contactHandlers := NewContactHandlers(c.Contacts)
	companyHandlers := NewCompanyHandlers(c.Companies)
	dealHandlers := NewDealHandlers(c.Deals)
	activityHandlers := NewActivityHandlers(c.Activities)
	vizHandlers := NewVizHandlers(c)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealdesk",
		Version: version,
	}, nil)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{Name: "list_contacts", Description: "List every contact with its company"}, contactHandlers.ListContacts)
	mcp.AddTool(server, &mcp.Tool{Name: "get_contact", Description: "Fetch one contact by id"}, contactHandlers.GetContact)
	mcp.AddTool(server, &mcp.Tool{Name: "create_contact", Description: "Add a contact; company_id is required"}, contactHandlers.CreateContact)
	mcp.AddTool(server, &mcp.Tool{Name: "update_contact", Description: "Change fields of an existing contact"}, contactHandlers.UpdateContact)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_contact", Description: "Delete a contact"}, contactHandlers.DeleteContact)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "bulk_update_contacts",
		Description: "Apply the same field changes to many contacts; reports per-contact failures",
	}, contactHandlers.BulkUpdateContacts)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "bulk_delete_contacts",
		Description: "Delete many contacts; reports per-contact failures",
	}, contactHandlers.BulkDeleteContacts)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_contacts",
		Description: "Export contacts as CSV to the configured export destination",
	}, contactHandlers.ExportContacts)

	// Companies
	mcp.AddTool(server, &mcp.Tool{Name: "list_companies", Description: "List every company"}, companyHandlers.ListCompanies)
	mcp.AddTool(server, &mcp.Tool{Name: "get_company", Description: "Fetch one company by id"}, companyHandlers.GetCompany)
	mcp.AddTool(server, &mcp.Tool{Name: "create_company", Description: "Add a company"}, companyHandlers.CreateCompany)
	mcp.AddTool(server, &mcp.Tool{Name: "update_company", Description: "Change fields of an existing company"}, companyHandlers.UpdateCompany)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_company", Description: "Delete a company"}, companyHandlers.DeleteCompany)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_companies",
		Description: "Find companies whose name, industry, or size contains the query",
	}, companyHandlers.SearchCompanies)

	// Deals
	mcp.AddTool(server, &mcp.Tool{Name: "list_deals", Description: "List every deal"}, dealHandlers.ListDeals)
	mcp.AddTool(server, &mcp.Tool{Name: "get_deal", Description: "Fetch one deal by id"}, dealHandlers.GetDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "create_deal", Description: "Add a deal (stage defaults to Lead)"}, dealHandlers.CreateDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "update_deal", Description: "Change fields of an existing deal"}, dealHandlers.UpdateDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_deal", Description: "Delete a deal"}, dealHandlers.DeleteDeal)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal_stage",
		Description: "Move a deal to another stage; closing sets probability to 100 or 0",
	}, dealHandlers.UpdateDealStage)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "deals_by_stage",
		Description: "Pipeline view: every stage with its deals, count, and total value",
	}, dealHandlers.DealsByStage)

	// Activities
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List activities, optionally only those for one contact or deal",
	}, activityHandlers.ListActivities)
	mcp.AddTool(server, &mcp.Tool{Name: "get_activity", Description: "Fetch one activity by id"}, activityHandlers.GetActivity)
	mcp.AddTool(server, &mcp.Tool{Name: "create_activity", Description: "Add a call, email, meeting, task, or note"}, activityHandlers.CreateActivity)
	mcp.AddTool(server, &mcp.Tool{Name: "update_activity", Description: "Change fields of an existing activity"}, activityHandlers.UpdateActivity)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_activity", Description: "Delete an activity"}, activityHandlers.DeleteActivity)
	mcp.AddTool(server, &mcp.Tool{Name: "complete_activity", Description: "Mark an activity as completed"}, activityHandlers.CompleteActivity)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "upcoming_activities",
		Description: "Open activities due from now on, soonest first",
	}, activityHandlers.UpcomingActivities)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "overdue_activities",
		Description: "Open activities whose due date has passed",
	}, activityHandlers.OverdueActivities)

	// Views
	mcp.AddTool(server, &mcp.Tool{Name: "dashboard", Description: "Pipeline, totals, and what needs attention"}, vizHandlers.Dashboard)
	mcp.AddTool(server, &mcp.Tool{Name: "pipeline_graph", Description: "GraphViz XDOT of companies, contacts, deals, and open activities"}, vizHandlers.PipelineGraph)

	promptHandlers := NewPromptHandlers(c)
	for _, p := range Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	resourceHandlers := NewResourceHandlers(c)
	for _, r := range Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, t := range ResourceTemplates() {
		server.AddResourceTemplate(t, resourceHandlers.ReadResource)
	}

	return server
}
