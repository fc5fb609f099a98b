package graph

import (
	"fmt"
)

// Snapshot is the loader's view of a graph: node ids, edge pairs and
// precomputed degrees.
type Snapshot struct {
	Nodes       []string            `json:"nodes" yaml:"nodes"`
	Edges       [][2]string         `json:"edges" yaml:"edges"`
	NodeDegrees map[string]int      `json:"nodeDegrees" yaml:"nodeDegrees"`
	Positions   map[string]Position `json:"positions,omitempty" yaml:"positions,omitempty"`
}

// Load builds a Store from a snapshot. Degrees present in the snapshot are
// trusted as given; nodes without an entry start at 0. Structural problems
// fail the whole load with ErrMalformedLoad.
func Load(snap Snapshot, opts ...Option) (*Store, error) {
	s := NewStore(opts...)

	for i, id := range snap.Nodes {
		if id == "" {
			return nil, fmt.Errorf("%w: node %d has an empty id", ErrMalformedLoad, i)
		}
		if s.HasNode(id) {
			return nil, fmt.Errorf("%w: duplicate node id %q", ErrMalformedLoad, id)
		}
		n := Node{ID: id}
		if p, ok := snap.Positions[id]; ok {
			n.X, n.Y = p.X, p.Y
		}
		s.appendNode(n, 0)
	}

	for i, pair := range snap.Edges {
		a, b := pair[0], pair[1]
		switch {
		case !s.HasNode(a) || !s.HasNode(b):
			return nil, fmt.Errorf("%w: edge %d (%q, %q) references an unknown node", ErrMalformedLoad, i, a, b)
		case a == b:
			return nil, fmt.Errorf("%w: edge %d is a self loop on %q", ErrMalformedLoad, i, a)
		case s.HasEdge(a, b):
			return nil, fmt.Errorf("%w: edge %d duplicates (%q, %q)", ErrMalformedLoad, i, a, b)
		}
		s.appendEdge(Edge{Source: a, Target: b})
	}

	for id, d := range snap.NodeDegrees {
		if !s.HasNode(id) {
			return nil, fmt.Errorf("%w: degree given for unknown node %q", ErrMalformedLoad, id)
		}
		if d < 0 {
			return nil, fmt.Errorf("%w: negative degree %d for %q", ErrMalformedLoad, d, id)
		}
		s.degree[id] = d
	}

	return s, nil
}

// Snapshot exports the store in the load format, including positions.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes:       make([]string, 0, len(s.nodes)),
		Edges:       make([][2]string, 0, len(s.edges)),
		NodeDegrees: make(map[string]int, len(s.degree)),
		Positions:   make(map[string]Position, len(s.nodes)),
	}
	for _, n := range s.nodes {
		snap.Nodes = append(snap.Nodes, n.ID)
		snap.NodeDegrees[n.ID] = s.degree[n.ID]
		snap.Positions[n.ID] = n.Position()
	}
	for _, e := range s.edges {
		snap.Edges = append(snap.Edges, [2]string{e.Source, e.Target})
	}
	return snap
}
