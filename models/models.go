// Package models provides the view types handed to renderers and API
// clients. They are plain copies of store state; changing them has no effect
// on the graph.
package models

import (
	"time"

	"github.com/TFMV/graphpad/graph"
)

// Node is a node as drawn: position plus its degree and styling.
type Node struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Degree int     `json:"degree"`
	Active bool    `json:"active"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
}

// Edge represents an undirected edge between two nodes
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is a point-in-time view of a session's graph
type Graph struct {
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	// NodeRadius is the drawn radius of a node and the default drop radius.
	NodeRadius = 5.0

	// DefaultNodeColor matches the canvas fill used for every node.
	DefaultNodeColor = "#6699cc"

	// ActiveNodeColor highlights the source of an edge drag.
	ActiveNodeColor = "#ff7f0e"

	// EdgeColor is the stroke for edges.
	EdgeColor = "#999999"
)

// NewGraph copies the store into a view sized width x height.
func NewGraph(name string, store *graph.Store, width, height float64) *Graph {
	g := &Graph{
		Name:      name,
		Nodes:     make([]Node, 0, store.NodeCount()),
		Edges:     make([]Edge, 0, store.EdgeCount()),
		Width:     width,
		Height:    height,
		CreatedAt: time.Now(),
	}
	store.ForEachNode(func(n graph.Node) {
		g.Nodes = append(g.Nodes, NewNode(n, store.DegreeOf(n.ID)))
	})
	store.ForEachEdge(func(e graph.Edge) {
		g.Edges = append(g.Edges, Edge{Source: e.Source, Target: e.Target})
	})
	return g
}

// NewNode builds the view of n.
func NewNode(n graph.Node, degree int) Node {
	color := DefaultNodeColor
	if n.Active {
		color = ActiveNodeColor
	}
	return Node{
		ID:     n.ID,
		Label:  n.ID,
		X:      n.X,
		Y:      n.Y,
		VX:     n.VX,
		VY:     n.VY,
		Degree: degree,
		Active: n.Active,
		Size:   NodeRadius,
		Color:  color,
	}
}
