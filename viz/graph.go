// ABOUTME: Graphviz rendering of the deal pipeline and the records around it
// ABOUTME: Produces XDOT with companies, contacts, deals, and open activities as linked nodes
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealdesk/models"
	"go.uber.org/zap"
)

type GraphGenerator struct {
	logger *zap.Logger
}

func NewGraphGenerator(logger *zap.Logger) *GraphGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphGenerator{logger: logger}
}

// GeneratePipelineGraph renders snap as XDOT. Deals are clustered by stage
// and linked to their company and contact.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context, snap Snapshot) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			g.logger.Warn("closing graphviz", zap.Error(err))
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			g.logger.Warn("closing graph", zap.Error(err))
		}
	}()

	graph.SetLabel("Deal Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	companyNodes := make(map[int]*cgraph.Node)
	for _, company := range snap.Companies {
		node, err := graph.CreateNodeByName(fmt.Sprintf("company_%d", company.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create company node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(Company)", company.CompanyName))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		companyNodes[company.ID] = node
	}

	contactNodes := make(map[int]*cgraph.Node)
	for _, contact := range snap.Contacts {
		node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%d", contact.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create contact node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", contact.FullName(), contact.Email))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("lightgreen")
		contactNodes[contact.ID] = node

		if contact.Company.IsSet() {
			if companyNode, ok := companyNodes[contact.Company.ID]; ok {
				edge, err := graph.CreateEdgeByName(fmt.Sprintf("works_at_%d", contact.ID), node, companyNode)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("works at")
				edge.SetStyle("dashed")
			}
		}
	}

	dealNodes := make(map[int]*cgraph.Node)
	for _, deal := range snap.Deals {
		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", deal.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s @ %d%%\n(%s)", deal.Title, FormatMoney(deal.Value), deal.Probability, deal.Stage))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor(stageColor(deal.Stage))
		dealNodes[deal.ID] = node

		if deal.Company.IsSet() {
			if companyNode, ok := companyNodes[deal.Company.ID]; ok {
				edge, err := graph.CreateEdgeByName(fmt.Sprintf("deal_with_%d", deal.ID), companyNode, node)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("deal")
			}
		}
		if deal.Contact.IsSet() {
			if contactNode, ok := contactNodes[deal.Contact.ID]; ok {
				edge, err := graph.CreateEdgeByName(fmt.Sprintf("contact_for_%d", deal.ID), contactNode, node)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("contact")
				edge.SetStyle("dotted")
			}
		}
	}

	for _, act := range snap.Activities {
		if act.Completed || !act.Deal.IsSet() {
			continue
		}
		dealNode, ok := dealNodes[act.Deal.ID]
		if !ok {
			continue
		}
		node, err := graph.CreateNodeByName(fmt.Sprintf("activity_%d", act.ID))
		if err != nil {
			return "", fmt.Errorf("failed to create activity node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s: %s", act.Type, act.Subject))
		node.SetShape("note")
		edge, err := graph.CreateEdgeByName(fmt.Sprintf("next_step_%d", act.ID), dealNode, node)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dotted")
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func stageColor(stage string) string {
	switch stage {
	case models.StageClosedWon:
		return "palegreen"
	case models.StageClosedLost:
		return "lightgray"
	}
	return "lightyellow"
}
