// ABOUTME: Graphviz renderings of the pipeline board and the client account map
// ABOUTME: Output is DOT source suitable for dot, or any graphviz viewer
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/views"
)

// render builds a graph with fill and returns its DOT source.
func render(ctx context.Context, label string, fill func(*cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel(label)
	graph.SetRankDir(cgraph.LRRank)
	if err := fill(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func money(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("$%.1fK", v/1000)
	}
	return fmt.Sprintf("$%.0f", v)
}

// PipelineGraph draws stages left to right with each stage's deals hanging
// off it. Deals without a live stage are grouped under "Unassigned".
func PipelineGraph(ctx context.Context, columns []views.Column, unassigned []models.Deal) (string, error) {
	return render(ctx, "Deal Pipeline", func(graph *cgraph.Graph) error {
		var prev *cgraph.Node
		addStage := func(id, name, color string, count int, value float64) (*cgraph.Node, error) {
			node, err := graph.CreateNodeByName("stage_" + id)
			if err != nil {
				return nil, fmt.Errorf("failed to create stage node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%d deals\n%s", name, count, money(value)))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor(color)
			if prev != nil {
				edge, err := graph.CreateEdgeByName("next", prev, node)
				if err != nil {
					return nil, fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetStyle("bold")
			}
			prev = node
			return node, nil
		}
		addDeals := func(stage *cgraph.Node, deals []models.Deal) error {
			for _, d := range deals {
				node, err := graph.CreateNodeByName("deal_" + d.ID)
				if err != nil {
					return fmt.Errorf("failed to create deal node: %w", err)
				}
				node.SetLabel(fmt.Sprintf("%s\n%s (%d%%)", d.Title, money(d.Value), d.Probability))
				node.SetShape("note")
				if _, err := graph.CreateEdgeByName("has", stage, node); err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
			}
			return nil
		}

		for _, col := range columns {
			color := col.Stage.Color
			if color == "" {
				color = "lightgray"
			}
			stage, err := addStage(col.Stage.ID, col.Stage.Name, color, len(col.Deals), col.Value)
			if err != nil {
				return err
			}
			if err := addDeals(stage, col.Deals); err != nil {
				return err
			}
		}
		if len(unassigned) > 0 {
			total := 0.0
			for _, d := range unassigned {
				total += d.Value
			}
			prev = nil
			stage, err := addStage("unassigned", "Unassigned", "white", len(unassigned), total)
			if err != nil {
				return err
			}
			stage.SetStyle("dashed")
			return addDeals(stage, unassigned)
		}
		return nil
	})
}

// AccountMap links each client to its deals and social campaigns.
// Records pointing at a missing client are left out.
func AccountMap(ctx context.Context, clients []models.Client, deals []models.Deal, campaigns []models.SocialCampaign) (string, error) {
	return render(ctx, "Client Accounts", func(graph *cgraph.Graph) error {
		nodes := make(map[string]*cgraph.Node)
		for _, c := range clients {
			node, err := graph.CreateNodeByName("client_" + c.ID)
			if err != nil {
				return fmt.Errorf("failed to create client node: %w", err)
			}
			label := c.Name
			if c.Company != "" {
				label = fmt.Sprintf("%s\n%s", c.Name, c.Company)
			}
			node.SetLabel(fmt.Sprintf("%s\n(%s)", label, c.Status))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor("lightblue")
			nodes[c.ID] = node
		}

		for _, d := range deals {
			ref, ok := d.ClientRef()
			client, found := nodes[ref.ID]
			if !ok || !found {
				continue
			}
			node, err := graph.CreateNodeByName("deal_" + d.ID)
			if err != nil {
				return fmt.Errorf("failed to create deal node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", d.Title, money(d.Value)))
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor("lightyellow")
			edge, err := graph.CreateEdgeByName("deal", client, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("deal")
		}

		for _, cp := range campaigns {
			ref, ok := cp.ClientRef()
			client, found := nodes[ref.ID]
			if !ok || !found {
				continue
			}
			node, err := graph.CreateNodeByName("campaign_" + cp.ID)
			if err != nil {
				return fmt.Errorf("failed to create campaign node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", cp.Title, cp.Platform))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor("lightgreen")
			edge, err := graph.CreateEdgeByName("campaign", client, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
		}
		return nil
	})
}
