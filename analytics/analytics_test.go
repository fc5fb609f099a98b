package analytics_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/graphpad/analytics"
	"github.com/TFMV/graphpad/graph"
)

// build loads a graph from node ids and edge pairs, deriving degrees from the edges.
func build(t *testing.T, nodes []string, edges [][2]string) *graph.Store {
	t.Helper()
	s, err := graph.Load(graph.Snapshot{Nodes: nodes})
	require.NoError(t, err)
	for _, e := range edges {
		_, err := s.TryAddEdge(e[0], e[1])
		require.NoError(t, err)
	}
	return s
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name       string
		nodes      []string
		edges      [][2]string
		avg        float64
		components int
		density    float64
		degrees    []int
	}{
		{
			name:       "three isolated nodes",
			nodes:      []string{"A", "B", "C"},
			avg:        0,
			components: 3,
			density:    0,
			degrees:    []int{0, 0, 0},
		},
		{
			name:       "triangle",
			nodes:      []string{"A", "B", "C"},
			edges:      [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}},
			avg:        2,
			components: 1,
			density:    1,
			degrees:    []int{2, 2, 2},
		},
		{
			name:       "path of four",
			nodes:      []string{"A", "B", "C", "D"},
			edges:      [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}},
			avg:        1.5,
			components: 1,
			density:    0.5,
			degrees:    []int{1, 2, 2, 1},
		},
		{
			name:       "two pairs and a loner",
			nodes:      []string{"A", "B", "C", "D", "E"},
			edges:      [][2]string{{"A", "B"}, {"D", "C"}},
			avg:        0.8,
			components: 3,
			density:    0.2,
			degrees:    []int{1, 1, 1, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := build(t, tt.nodes, tt.edges)
			eng := analytics.NewEngine(s)

			assert.InDelta(t, tt.avg, eng.AverageDegree(), 1e-9)
			assert.Equal(t, tt.components, eng.ConnectedComponents())
			assert.InDelta(t, tt.density, eng.GraphDensity(), 1e-9)

			got := make([]int, 0, len(tt.nodes))
			for _, id := range tt.nodes {
				got = append(got, s.DegreeOf(id))
			}
			assert.Equal(t, tt.degrees, got)
		})
	}
}

func TestEmptyGraphPolicy(t *testing.T) {
	eng := analytics.NewEngine(graph.NewStore())

	assert.Equal(t, 0.0, eng.AverageDegree())
	assert.Equal(t, 0, eng.ConnectedComponents())
	assert.Equal(t, 0.0, eng.GraphDensity())

	sum, err := eng.Summarize(4)
	require.NoError(t, err)
	assert.True(t, sum.Empty)
	assert.ErrorIs(t, sum.Err(), analytics.ErrEmptyGraph)
	assert.Empty(t, sum.Histogram)
}

func TestDensitySingleNode(t *testing.T) {
	eng := analytics.NewEngine(build(t, []string{"solo"}, nil))
	assert.Equal(t, 0.0, eng.GraphDensity())
	assert.Equal(t, 1, eng.ConnectedComponents())
}

// randomGraph returns node ids and a random simple edge set on them.
func randomGraph(r *rand.Rand, n int, p float64) ([]string, [][2]string) {
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("V%d", i)
	}
	var edges [][2]string
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.Float64() < p {
				edges = append(edges, [2]string{nodes[i], nodes[j]})
			}
		}
	}
	return nodes, edges
}

func TestConnectedComponentsOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		nodes, edges := randomGraph(r, 30, 0.05)
		want := analytics.NewEngine(build(t, nodes, edges)).ConnectedComponents()

		for shuffle := 0; shuffle < 5; shuffle++ {
			n := append([]string(nil), nodes...)
			e := append([][2]string(nil), edges...)
			r.Shuffle(len(n), func(i, j int) { n[i], n[j] = n[j], n[i] })
			r.Shuffle(len(e), func(i, j int) { e[i], e[j] = e[j], e[i] })
			for i := range e {
				if r.Intn(2) == 0 {
					e[i][0], e[i][1] = e[i][1], e[i][0]
				}
			}

			got := analytics.NewEngine(build(t, n, e)).ConnectedComponents()
			require.Equal(t, want, got, "round %d shuffle %d", round, shuffle)
		}
	}
}

func TestConnectedComponentsLargePath(t *testing.T) {
	// Deep enough that a recursive walk would nest once per node.
	const n = 2000
	s := graph.NewStore(graph.WithIDGenerator(&graph.SequenceGenerator{Prefix: "p"}))
	prev := ""
	for i := 0; i < n; i++ {
		id, err := s.AddNode(graph.Position{})
		require.NoError(t, err)
		if prev != "" {
			_, err = s.TryAddEdge(prev, id)
			require.NoError(t, err)
		}
		prev = id
	}
	// One isolated node on top of the path.
	_, err := s.AddNode(graph.Position{})
	require.NoError(t, err)

	assert.Equal(t, 2, analytics.NewEngine(s).ConnectedComponents())
}

func TestDensityBounds(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 25; i++ {
		nodes, edges := randomGraph(r, 2+r.Intn(15), r.Float64())
		d := analytics.NewEngine(build(t, nodes, edges)).GraphDensity()
		assert.GreaterOrEqual(t, d, 0.0)
		assert.LessOrEqual(t, d, 1.0)
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	nodes, edges := randomGraph(r, 20, 0.1)
	s := build(t, nodes, edges)
	eng := analytics.NewEngine(s)
	before := s.Snapshot()

	first, err := eng.Summarize(5)
	require.NoError(t, err)
	second, err := eng.Summarize(5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, s.Snapshot(), "queries must not mutate the store")
}

func TestDegreeHistogram(t *testing.T) {
	// degrees: hub=4, a..d=1, e=0
	s := build(t,
		[]string{"hub", "a", "b", "c", "d", "e"},
		[][2]string{{"hub", "a"}, {"hub", "b"}, {"hub", "c"}, {"hub", "d"}},
	)
	eng := analytics.NewEngine(s)

	hist, err := eng.DegreeHistogram(2)
	require.NoError(t, err)
	assert.Equal(t, []analytics.Bucket{
		{Start: 0, End: 2, Count: 5},
		{Start: 2, End: 4, Count: 1},
	}, hist)

	hist, err = eng.DegreeHistogram(4)
	require.NoError(t, err)
	counts := make([]int, len(hist))
	total := 0
	for i, b := range hist {
		counts[i] = b.Count
		total += b.Count
	}
	assert.Equal(t, []int{1, 4, 0, 1}, counts)
	assert.Equal(t, s.NodeCount(), total)
	assert.Equal(t, 4.0, hist[len(hist)-1].End)
}

func TestDegreeHistogramAllZero(t *testing.T) {
	eng := analytics.NewEngine(build(t, []string{"a", "b", "c"}, nil))

	hist, err := eng.DegreeHistogram(3)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, 3, hist[0].Count)
	assert.Equal(t, 0, hist[1].Count)
	assert.Equal(t, 0, hist[2].Count)
}

func TestDegreeHistogramInvalidBucketCount(t *testing.T) {
	eng := analytics.NewEngine(build(t, []string{"a"}, nil))
	for _, n := range []int{0, -3} {
		_, err := eng.DegreeHistogram(n)
		assert.ErrorIs(t, err, analytics.ErrInvalidBucketCount)
	}

	_, err := eng.Summarize(0)
	assert.ErrorIs(t, err, analytics.ErrInvalidBucketCount)
}

func TestSummaryString(t *testing.T) {
	eng := analytics.NewEngine(build(t,
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}},
	))
	sum, err := eng.Summarize(1)
	require.NoError(t, err)

	assert.Equal(t, "average degree 1.50, components 1, density 0.5000", sum.String())
	assert.NoError(t, sum.Err())
	assert.Equal(t, 4, sum.Nodes)
	assert.Equal(t, 3, sum.Edges)
}
