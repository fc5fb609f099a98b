package models

import (
	"fmt"

	"github.com/TFMV/graphpad/graph"
)

// NodeFilter selects nodes in FilterNodes.
type NodeFilter func(node *Node) bool

// Isolated matches nodes with no edges.
func Isolated(node *Node) bool { return node.Degree == 0 }

// FindNodeByID returns the node with id. A miss wraps graph.ErrUnknownNode.
func (g *Graph) FindNodeByID(id string) (*Node, error) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", graph.ErrUnknownNode, id)
}

// Endpoints returns both nodes of an edge, or false if either is missing.
func (g *Graph) Endpoints(e Edge) (*Node, *Node, bool) {
	var source, target *Node
	for i := range g.Nodes {
		if g.Nodes[i].ID == e.Source {
			source = &g.Nodes[i]
		}
		if g.Nodes[i].ID == e.Target {
			target = &g.Nodes[i]
		}
		if source != nil && target != nil {
			return source, target, true
		}
	}
	return nil, nil, false
}

// FindConnectedNodes returns the neighbours of nodeID in node order.
func (g *Graph) FindConnectedNodes(nodeID string) []Node {
	adjacent := make(map[string]bool)
	for _, e := range g.Edges {
		switch nodeID {
		case e.Source:
			adjacent[e.Target] = true
		case e.Target:
			adjacent[e.Source] = true
		}
	}

	result := make([]Node, 0, len(adjacent))
	for _, n := range g.Nodes {
		if adjacent[n.ID] {
			result = append(result, n)
		}
	}
	return result
}

// FilterNodes returns copies of the nodes filter accepts.
func (g *Graph) FilterNodes(filter NodeFilter) []Node {
	result := []Node{}
	for i := range g.Nodes {
		if filter(&g.Nodes[i]) {
			result = append(result, g.Nodes[i])
		}
	}
	return result
}
