package physics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/graphpad/graph"
)

func testStore(t *testing.T) *graph.Store {
	t.Helper()
	s, err := graph.Load(graph.Snapshot{
		Nodes:       []string{"a", "b", "c", "d", "loner"},
		Edges:       [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}},
		NodeDegrees: map[string]int{"a": 2, "b": 2, "c": 3, "d": 1},
	})
	require.NoError(t, err)
	return s
}

func TestChargeStrength(t *testing.T) {
	assert.Equal(t, -200.0, ChargeStrength(0))
	assert.Equal(t, -50.0, ChargeStrength(1))
	assert.Equal(t, -50.0, ChargeStrength(7))
}

func TestForceDirectedStaysInBounds(t *testing.T) {
	const width, height = 400.0, 300.0
	s := testStore(t)

	stable, err := Run(context.Background(), NewForceDirectedLayout(width, height, 1), s, 1000)
	require.NoError(t, err)
	assert.True(t, stable)

	s.ForEachNode(func(n graph.Node) {
		assert.GreaterOrEqual(t, n.X, marginLow, n.ID)
		assert.LessOrEqual(t, n.X, width-marginHigh, n.ID)
		assert.GreaterOrEqual(t, n.Y, marginLow, n.ID)
		assert.LessOrEqual(t, n.Y, height-marginHigh, n.ID)
	})
}

func TestForceDirectedIsDeterministic(t *testing.T) {
	a, b := testStore(t), testStore(t)

	_, err := Run(context.Background(), NewForceDirectedLayout(500, 500, 7), a, 200)
	require.NoError(t, err)
	_, err = Run(context.Background(), NewForceDirectedLayout(500, 500, 7), b, 200)
	require.NoError(t, err)

	assert.Equal(t, a.Nodes(), b.Nodes())
}

func TestForceDirectedSeparatesNodes(t *testing.T) {
	s := testStore(t)
	_, err := Run(context.Background(), NewForceDirectedLayout(600, 600, 3), s, 300)
	require.NoError(t, err)

	nodes := s.Nodes()
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			dx := nodes[i].X - nodes[j].X
			dy := nodes[i].Y - nodes[j].Y
			assert.Greater(t, dx*dx+dy*dy, 1.0, "%s and %s overlap", nodes[i].ID, nodes[j].ID)
		}
	}
}

func TestForceDirectedLayoutDoesNotTouchTopology(t *testing.T) {
	s := testStore(t)
	before := s.Snapshot()

	_, err := Run(context.Background(), NewForceDirectedLayout(300, 300, 1), s, 50)
	require.NoError(t, err)

	after := s.Snapshot()
	assert.Equal(t, before.Nodes, after.Nodes)
	assert.Equal(t, before.Edges, after.Edges)
	assert.Equal(t, before.NodeDegrees, after.NodeDegrees)
}

func TestForceDirectedStopsAtMaxIterations(t *testing.T) {
	fd := NewForceDirectedLayout(300, 300, 1)
	fd.SetMaxIterations(3)
	fd.Initialize(testStore(t))

	assert.False(t, fd.Step())
	assert.False(t, fd.Step())
	assert.True(t, fd.Step())
	assert.True(t, fd.Step())
	assert.Less(t, fd.Alpha(), 1.0)
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := testStore(t)
	stable, err := Run(ctx, NewForceDirectedLayout(300, 300, 1), s, 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, stable)

	// Initial placement is still written back.
	n, ok := s.Node("a")
	require.True(t, ok)
	assert.NotEqual(t, graph.Position{}, n.Position())
}

func TestRunEmptyStore(t *testing.T) {
	s := graph.NewStore()
	_, err := Run(context.Background(), NewForceDirectedLayout(300, 300, 1), s, 10)
	require.NoError(t, err)
	assert.Zero(t, s.NodeCount())
}

func TestSurrealLayout(t *testing.T) {
	layout := GetLayoutAlgorithm("surreal", 400, 400, 1, 5)
	assert.Equal(t, "Surreal Layout", layout.GetName())
	assert.Equal(t, "Force-Directed Layout", GetLayoutAlgorithm("force", 400, 400, 0, 5).GetName())

	plain, noisy := testStore(t), testStore(t)
	_, err := Run(context.Background(), NewForceDirectedLayout(400, 400, 5), plain, 100)
	require.NoError(t, err)
	_, err = Run(context.Background(), layout, noisy, 100)
	require.NoError(t, err)

	moved := false
	for i, n := range noisy.Nodes() {
		p := plain.Nodes()[i]
		if n.X != p.X || n.Y != p.Y {
			moved = true
		}
	}
	assert.True(t, moved, "surreal layout should displace at least one node")
}
