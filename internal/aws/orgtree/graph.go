package orgtree

import (
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Graph builds a directed graph with an edge from every container (root or
// OU) to each OU and account it holds. Vertices are keyed by ID.
func Graph(inv *Inventory) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	if err := g.AddVertex(inv.Root.Id, graph.VertexAttribute("label", inv.Root.Name), graph.VertexAttribute("shape", "doubleoctagon")); err != nil {
		return nil, err
	}
	if err := addAccounts(g, inv.Root.Id, inv.Root.Accounts); err != nil {
		return nil, err
	}

	err := inv.Root.Walk(func(node *OuNode, _ []string) error {
		if err := g.AddVertex(node.Id, graph.VertexAttribute("label", node.Name), graph.VertexAttribute("shape", "folder")); err != nil {
			return fmt.Errorf("adding OU %s: %w", node.Id, err)
		}
		if err := g.AddEdge(node.Parent, node.Id); err != nil {
			return fmt.Errorf("linking OU %s to %s: %w", node.Id, node.Parent, err)
		}
		return addAccounts(g, node.Id, node.Accounts)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func addAccounts(g graph.Graph[string, string], parentID string, accounts []Account) error {
	for _, a := range accounts {
		label := fmt.Sprintf("%s\n%s", a.Name, a.Id)
		if err := g.AddVertex(a.Id, graph.VertexAttribute("label", label), graph.VertexAttribute("shape", "box")); err != nil {
			return fmt.Errorf("adding account %s: %w", a.Id, err)
		}
		if err := g.AddEdge(parentID, a.Id); err != nil {
			return fmt.Errorf("linking account %s to %s: %w", a.Id, parentID, err)
		}
	}
	return nil
}

// WriteDOT renders the inventory graph in Graphviz DOT format.
func WriteDOT(w io.Writer, inv *Inventory) error {
	g, err := Graph(inv)
	if err != nil {
		return err
	}
	return draw.DOT(g, w, draw.GraphAttribute("rankdir", "LR"))
}
