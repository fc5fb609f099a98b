package session_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/TFMV/graphpad/graph"
	"github.com/TFMV/graphpad/interaction"
	"github.com/TFMV/graphpad/render"
	"github.com/TFMV/graphpad/session"
)

type recorder struct {
	nodes    []string
	edges    []graph.Edge
	rejected []error
	drags    int
}

func (r *recorder) NodeAdded(n graph.Node)               { r.nodes = append(r.nodes, n.ID) }
func (r *recorder) EdgeAdded(e graph.Edge)               { r.edges = append(r.edges, e) }
func (r *recorder) Rejected(err error)                   { r.rejected = append(r.rejected, err) }
func (r *recorder) DragStarted(graph.Node)               { r.drags++ }
func (r *recorder) DragMoved(graph.Node, graph.Position) {}
func (r *recorder) DragEnded(graph.Node)                 {}

type fixture struct {
	sess  *session.Session
	clock *interaction.ManualScheduler
	rec   *recorder
}

// newFixture starts a session with A(100,100), B(200,100), C(300,100).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := graph.Load(graph.Snapshot{
		Nodes: []string{"A", "B", "C"},
		Positions: map[string]graph.Position{
			"A": {X: 100, Y: 100},
			"B": {X: 200, Y: 100},
			"C": {X: 300, Y: 100},
		},
	})
	require.NoError(t, err)

	clock := interaction.NewManualScheduler(time.Unix(0, 0))
	sess := session.New(store,
		session.WithName("test"),
		session.WithCanvas(400, 300),
		session.WithScheduler(clock),
		session.WithLogger(zaptest.NewLogger(t)),
	)
	rec := &recorder{}
	sess.Subscribe(rec)
	return &fixture{sess: sess, clock: clock, rec: rec}
}

// drag performs a full press-hold-release gesture.
func (f *fixture) drag(t *testing.T, from string, to graph.Position) interaction.Result {
	t.Helper()
	require.NoError(t, f.sess.Press(from, graph.Position{}))
	f.clock.Advance(interaction.DefaultDragThreshold)
	require.Equal(t, interaction.DraggingEdge, f.sess.State())
	f.sess.Move(to)
	return f.sess.Release(to)
}

func TestDragCreatesEdge(t *testing.T) {
	f := newFixture(t)

	res := f.drag(t, "A", graph.Position{X: 201, Y: 101})
	assert.Equal(t, interaction.OutcomeEdgeCreated, res.Outcome)
	assert.Equal(t, []graph.Edge{{Source: "A", Target: "B"}}, f.rec.edges)
	assert.Equal(t, 1, f.rec.drags)

	stats, err := f.sess.Stats(2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Edges)
	assert.Equal(t, 2, stats.ConnectedComponents)
}

func TestDragRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.drag(t, "A", graph.Position{X: 200, Y: 100})

	res := f.drag(t, "B", graph.Position{X: 100, Y: 100})
	assert.Equal(t, interaction.OutcomeRejected, res.Outcome)
	assert.ErrorIs(t, res.Err, graph.ErrDuplicateEdge)
	require.Len(t, f.rec.rejected, 1)
	assert.Len(t, f.rec.edges, 1)
}

func TestClickAddsNodeOnlyOnEmptyCanvas(t *testing.T) {
	f := newFixture(t)

	res, err := f.sess.Click(graph.Position{X: 50, Y: 250}, "")
	require.NoError(t, err)
	assert.Equal(t, interaction.OutcomeNodeAdded, res.Outcome)
	require.Len(t, f.rec.nodes, 1)

	// Within the node radius of A: resolved as a hit.
	res, err = f.sess.Click(graph.Position{X: 102, Y: 101}, "")
	require.NoError(t, err)
	assert.Equal(t, interaction.OutcomeNone, res.Outcome)

	assert.Len(t, f.sess.View().Nodes, 4)
}

func TestPressAt(t *testing.T) {
	f := newFixture(t)

	hit, err := f.sess.PressAt(graph.Position{X: 10, Y: 10})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, interaction.Idle, f.sess.State())

	hit, err = f.sess.PressAt(graph.Position{X: 299, Y: 100})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, interaction.Pressed, f.sess.State())

	res := f.sess.Release(graph.Position{X: 299, Y: 100})
	assert.Equal(t, interaction.OutcomeClicked, res.Outcome)
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture(t)
	other := &recorder{}
	cancel := f.sess.Subscribe(other)

	_, err := f.sess.Click(graph.Position{X: 10, Y: 10}, "")
	require.NoError(t, err)
	cancel()
	_, err = f.sess.Click(graph.Position{X: 20, Y: 280}, "")
	require.NoError(t, err)

	assert.Len(t, other.nodes, 1)
	assert.Len(t, f.rec.nodes, 2)
}

func TestRenderIncludesDragLine(t *testing.T) {
	f := newFixture(t)
	opts := render.NewDefaultOptions("svg")
	opts.Timestamp = false

	require.NoError(t, f.sess.Press("A", graph.Position{X: 100, Y: 100}))
	f.clock.Advance(interaction.DefaultDragThreshold)
	f.sess.Move(graph.Position{X: 150, Y: 150})

	out, err := f.sess.Render(opts)
	require.NoError(t, err)
	assert.Contains(t, string(out), `class="drag-line" x1="100" y1="100" x2="150" y2="150"`)
	assert.Contains(t, string(out), `width="400" height="300"`)
	assert.Nil(t, opts.DragLine, "caller options must not be modified")

	f.sess.Cancel()
	out, err = f.sess.Render(opts)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(out), "drag-line"))
}

func TestTickKeepsTopology(t *testing.T) {
	f := newFixture(t)
	f.drag(t, "A", graph.Position{X: 200, Y: 100})
	before := f.sess.Snapshot()

	_, err := f.sess.Tick(context.Background(), 50)
	require.NoError(t, err)

	after := f.sess.Snapshot()
	assert.Equal(t, before.Edges, after.Edges)
	assert.Equal(t, before.NodeDegrees, after.NodeDegrees)
	for _, p := range after.Positions {
		assert.GreaterOrEqual(t, p.X, 15.0)
		assert.LessOrEqual(t, p.X, 370.0)
	}
}

func TestTickCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.sess.Tick(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNilStoreStartsEmpty(t *testing.T) {
	sess := session.New(nil)
	stats, err := sess.Stats(3)
	require.NoError(t, err)
	assert.True(t, stats.Empty)
	assert.Equal(t, "graph", sess.Name())
}

func TestConcurrentUse(t *testing.T) {
	sess := session.New(nil,
		session.WithDragThreshold(time.Millisecond),
		session.WithLogger(zaptest.NewLogger(t)),
	)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := sess.Click(graph.Position{X: float64(i*40 + 10), Y: float64(j*12 + 10)}, "")
				assert.NoError(t, err)
				_, err = sess.Stats(4)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	snap := sess.Snapshot()
	assert.Len(t, snap.Nodes, 160)
}
