// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only JSON views of records and the pipeline by dealdesk:// URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/dealdesk/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "dealdesk://"

type ResourceHandlers struct {
	app *app.Container
}

func NewResourceHandlers(c *app.Container) *ResourceHandlers {
	return &ResourceHandlers{app: c}
}

// Resources lists the fixed collection URIs.
func Resources() []*mcp.Resource {
	var out []*mcp.Resource
	for _, name := range []string{"contacts", "companies", "deals", "activities", "pipeline"} {
		out = append(out, &mcp.Resource{
			URI:      resourceScheme + name,
			Name:     name,
			MIMEType: "application/json",
		})
	}
	return out
}

// ResourceTemplates lists the per-record URIs.
func ResourceTemplates() []*mcp.ResourceTemplate {
	var out []*mcp.ResourceTemplate
	for _, name := range []string{"contacts", "companies", "deals", "activities"} {
		out = append(out, &mcp.ResourceTemplate{
			URITemplate: resourceScheme + name + "/{id}",
			Name:        strings.TrimSuffix(name, "s"),
			MIMEType:    "application/json",
		})
	}
	return out
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	if len(parts) > 2 {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	var id int
	if len(parts) == 2 {
		var err error
		if id, err = strconv.Atoi(parts[1]); err != nil {
			return nil, fmt.Errorf("invalid id in %s: %w", uri, err)
		}
	}

	v, err := h.lookup(ctx, parts[0], id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", parts[0], err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

// lookup returns the collection when id is zero, otherwise one record.
func (h *ResourceHandlers) lookup(ctx context.Context, kind string, id int) (any, error) {
	switch kind {
	case "contacts":
		if id == 0 {
			return h.app.Contacts.GetAll(ctx), nil
		}
		return h.app.Contacts.GetByID(ctx, id)
	case "companies":
		if id == 0 {
			return h.app.Companies.GetAll(ctx), nil
		}
		return h.app.Companies.GetByID(ctx, id)
	case "deals":
		if id == 0 {
			return h.app.Deals.GetAll(ctx), nil
		}
		return h.app.Deals.GetByID(ctx, id)
	case "activities":
		if id == 0 {
			return h.app.Activities.GetAll(ctx), nil
		}
		return h.app.Activities.GetByID(ctx, id)
	case "pipeline":
		if id != 0 {
			return nil, nil
		}
		return h.app.Deals.GetDealsByStage(ctx), nil
	}
	return nil, nil
}
