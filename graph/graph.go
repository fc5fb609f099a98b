// Package graph holds the in-memory undirected graph: nodes in insertion
// order, edges, and the degree index kept in step with every mutation.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines (see package session) must serialize access themselves.
package graph

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSelfLoop is returned when both endpoints of an edge are the same node.
	ErrSelfLoop = errors.New("graph: self loops are not allowed")

	// ErrDuplicateEdge is returned when an edge between the two nodes already exists.
	ErrDuplicateEdge = errors.New("graph: this connection already exists")

	// ErrUnknownNode is returned when an operation references a node id not in the store.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrMalformedLoad is returned when a snapshot cannot be turned into a valid store.
	ErrMalformedLoad = errors.New("graph: malformed load input")
)

// maxIDAttempts bounds collision retries in AddNode.
const maxIDAttempts = 16

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a vertex. Position and velocity belong to the layout side; the
// store only reads them to resolve drop targets.
type Node struct {
	ID     string
	X, Y   float64 // position for rendering
	VX, VY float64 // velocity used in physics simulation
	Active bool
}

// Position returns the node's current canvas position.
func (n Node) Position() Position {
	return Position{X: n.X, Y: n.Y}
}

// Edge is an undirected connection. (a,b) and (b,a) are the same edge.
type Edge struct {
	Source string
	Target string
}

type pairKey struct{ a, b string }

func keyOf(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Store is the graph plus its degree index.
type Store struct {
	nodes  []Node
	index  map[string]int
	edges  []Edge
	pairs  map[pairKey]struct{}
	degree map[string]int
	ids    IDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default uuid-based id source for AddNode.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.ids = gen
		}
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nodes:  make([]Node, 0),
		index:  make(map[string]int),
		edges:  make([]Edge, 0),
		pairs:  make(map[pairKey]struct{}),
		degree: make(map[string]int),
		ids:    UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddNode appends a node with a fresh id at pos and degree 0.
func (s *Store) AddNode(pos Position) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.ids.NextID()
		if id == "" {
			continue
		}
		if _, taken := s.index[id]; taken {
			continue
		}
		s.appendNode(Node{ID: id, X: pos.X, Y: pos.Y}, 0)
		return id, nil
	}
	return "", fmt.Errorf("graph: no free node id after %d attempts", maxIDAttempts)
}

func (s *Store) appendNode(n Node, degree int) {
	s.index[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	s.degree[n.ID] = degree
}

// TryAddEdge validates and appends the edge a-b, bumping both degrees.
// On error the store is left untouched.
func (s *Store) TryAddEdge(a, b string) (Edge, error) {
	if a == b {
		return Edge{}, ErrSelfLoop
	}
	if _, ok := s.index[a]; !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrUnknownNode, a)
	}
	if _, ok := s.index[b]; !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrUnknownNode, b)
	}
	if s.HasEdge(a, b) {
		return Edge{}, ErrDuplicateEdge
	}

	e := Edge{Source: a, Target: b}
	s.appendEdge(e)
	s.degree[a]++
	s.degree[b]++
	return e, nil
}

func (s *Store) appendEdge(e Edge) {
	s.edges = append(s.edges, e)
	s.pairs[keyOf(e.Source, e.Target)] = struct{}{}
}

// HasEdge reports whether an edge joins a and b in either direction.
func (s *Store) HasEdge(a, b string) bool {
	_, ok := s.pairs[keyOf(a, b)]
	return ok
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// DegreeOf returns the indexed degree of id, or 0 if id is unknown.
func (s *Store) DegreeOf(id string) int { return s.degree[id] }

// HasNode reports whether id is in the store.
func (s *Store) HasNode(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Nodes returns a copy of the nodes in insertion order.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the edges in insertion order.
func (s *Store) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Degrees returns a copy of the degree index.
func (s *Store) Degrees() map[string]int {
	out := make(map[string]int, len(s.degree))
	for id, d := range s.degree {
		out[id] = d
	}
	return out
}

// ForEachNode calls fn for each node in insertion order without copying the slice.
func (s *Store) ForEachNode(fn func(Node)) {
	for _, n := range s.nodes {
		fn(n)
	}
}

// ForEachEdge calls fn for each edge in insertion order.
func (s *Store) ForEachEdge(fn func(Edge)) {
	for _, e := range s.edges {
		fn(e)
	}
}

// NodeAt returns the node nearest to (x, y) whose distance is strictly below radius.
// Ties keep the earlier node.
func (s *Store) NodeAt(x, y, radius float64) (Node, bool) {
	best := -1
	bestDist := radius
	for i, n := range s.nodes {
		dx := n.X - x
		dy := n.Y - y
		d := math.Sqrt(dx*dx + dy*dy)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return Node{}, false
	}
	return s.nodes[best], true
}

// SetPosition moves a node. It is the layout side's write path.
func (s *Store) SetPosition(id string, x, y float64) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	s.nodes[i].X = x
	s.nodes[i].Y = y
	return nil
}

// SetVelocity updates a node's velocity.
func (s *Store) SetVelocity(id string, vx, vy float64) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	s.nodes[i].VX = vx
	s.nodes[i].VY = vy
	return nil
}

// SetActive flags a node as the source of an in-progress gesture.
func (s *Store) SetActive(id string, active bool) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	s.nodes[i].Active = active
	return nil
}

// VerifyDegrees recomputes degrees from the edge list and returns the ids
// whose indexed degree disagrees. The index is not modified.
func (s *Store) VerifyDegrees() []string {
	counted := make(map[string]int, len(s.nodes))
	for _, e := range s.edges {
		counted[e.Source]++
		counted[e.Target]++
	}
	var bad []string
	for _, n := range s.nodes {
		if counted[n.ID] != s.degree[n.ID] {
			bad = append(bad, n.ID)
		}
	}
	return bad
}
