// Package analytics computes read-only summary statistics over a graph.Store:
// average degree, connected components, density and degree histograms.
package analytics

import (
	"errors"
	"fmt"

	"github.com/TFMV/graphpad/graph"
)

var (
	// ErrEmptyGraph marks a query on a graph with no nodes. Queries return
	// their sentinel value (0) instead of failing; Summary.Empty reports it.
	ErrEmptyGraph = errors.New("analytics: graph has no nodes")

	// ErrInvalidBucketCount is returned by DegreeHistogram for bucketCount < 1.
	ErrInvalidBucketCount = errors.New("analytics: bucket count must be at least 1")
)

// Engine answers statistics queries. It never mutates the store.
type Engine struct {
	store *graph.Store
}

// NewEngine creates an Engine over store.
func NewEngine(store *graph.Store) *Engine {
	return &Engine{store: store}
}

// AverageDegree returns sum(degree) / nodeCount, or 0 for an empty graph.
func (e *Engine) AverageDegree() float64 {
	n := e.store.NodeCount()
	if n == 0 {
		return 0
	}
	total := 0
	e.store.ForEachNode(func(node graph.Node) {
		total += e.store.DegreeOf(node.ID)
	})
	return float64(total) / float64(n)
}

// ConnectedComponents counts maximal sets of mutually reachable nodes.
// Isolated nodes count as their own component.
func (e *Engine) ConnectedComponents() int {
	edges := e.store.Edges()
	visited := make(map[string]struct{}, e.store.NodeCount())
	components := 0

	var stack []string
	e.store.ForEachNode(func(root graph.Node) {
		if _, seen := visited[root.ID]; seen {
			return
		}
		components++
		visited[root.ID] = struct{}{}
		stack = append(stack[:0], root.ID)

		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, edge := range edges {
				var next string
				switch id {
				case edge.Source:
					next = edge.Target
				case edge.Target:
					next = edge.Source
				default:
					continue
				}
				if _, seen := visited[next]; seen {
					continue
				}
				// mark before push so cycles cannot requeue a node
				visited[next] = struct{}{}
				stack = append(stack, next)
			}
		}
	})

	return components
}

// GraphDensity returns 2|E| / (|V|(|V|-1)), or 0 when there are fewer than two nodes.
func (e *Engine) GraphDensity() float64 {
	v := e.store.NodeCount()
	if v < 2 {
		return 0
	}
	return 2 * float64(e.store.EdgeCount()) / (float64(v) * float64(v-1))
}

// Bucket is one histogram bin. Start is inclusive; End is exclusive except
// for the last bucket, which includes the maximum degree.
type Bucket struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// DegreeHistogram bins node degrees into bucketCount equal-width buckets over
// [0, max degree]. An empty graph yields no buckets.
func (e *Engine) DegreeHistogram(bucketCount int) ([]Bucket, error) {
	if bucketCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBucketCount, bucketCount)
	}
	if e.store.NodeCount() == 0 {
		return []Bucket{}, nil
	}

	maxDegree := 0
	e.store.ForEachNode(func(n graph.Node) {
		if d := e.store.DegreeOf(n.ID); d > maxDegree {
			maxDegree = d
		}
	})

	buckets := make([]Bucket, bucketCount)
	width := float64(maxDegree) / float64(bucketCount)
	for i := range buckets {
		buckets[i].Start = float64(i) * width
		buckets[i].End = float64(i+1) * width
	}
	buckets[bucketCount-1].End = float64(maxDegree)

	e.store.ForEachNode(func(n graph.Node) {
		buckets[bucketFor(e.store.DegreeOf(n.ID), width, bucketCount)].Count++
	})
	return buckets, nil
}

func bucketFor(degree int, width float64, bucketCount int) int {
	if width == 0 {
		return 0
	}
	i := int(float64(degree) / width)
	if i >= bucketCount {
		i = bucketCount - 1
	}
	return i
}
