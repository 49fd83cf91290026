// ABOUTME: Dashboard and GraphViz MCP handlers
// ABOUTME: Provides the dashboard and pipeline_graph tools for agents
package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var nodeLine = regexp.MustCompile(`(?m)^\s*(company|contact|deal|activity)_\d+\s+\[`)

type VizHandlers struct {
	app *app.Container
}

func NewVizHandlers(c *app.Container) *VizHandlers {
	return &VizHandlers{app: c}
}

type DashboardOutput struct {
	Text  string              `json:"text"`
	Stats *viz.DashboardStats `json:"stats"`
}

type GenerateGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) Dashboard(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, DashboardOutput, error) {
	stats := viz.GenerateDashboardStats(h.app.Snapshot(ctx))
	return nil, DashboardOutput{Text: viz.RenderDashboard(stats), Stats: stats}, nil
}

func (h *VizHandlers) PipelineGraph(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	dot, err := viz.NewGraphGenerator(h.app.Logger).GeneratePipelineGraph(ctx, h.app.Snapshot(ctx))
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}

	return nil, GenerateGraphOutput{
		DOTSource: dot,
		NodeCount: len(nodeLine.FindAllString(dot, -1)),
		EdgeCount: strings.Count(dot, " -> "),
	}, nil
}
