// ABOUTME: Visualization CLI commands
// ABOUTME: Handles the terminal dashboard and pipeline graph generation
package cli

import (
	"context"
	"os"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/viz"
)

// VizGraphPipelineCommand generates a deal pipeline graph.
func VizGraphPipelineCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("graph pipeline")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(c.Logger).GeneratePipelineGraph(ctx, c.Snapshot(ctx))
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	printf("%s\n", dot)
	return nil
}

func VizDashboardCommand(ctx context.Context, c *app.Container, args []string) error {
	fs := newFlagSet("dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats := viz.GenerateDashboardStats(c.Snapshot(ctx))
	printf("%s", viz.RenderDashboard(stats))
	return nil
}
