// Package session owns one interactive graph: its store, the edge-creation
// machine, the analytics engine and the layout. Every operation takes the
// session lock, including timer callbacks fired by the scheduler.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TFMV/graphpad/analytics"
	"github.com/TFMV/graphpad/graph"
	"github.com/TFMV/graphpad/interaction"
	"github.com/TFMV/graphpad/models"
	"github.com/TFMV/graphpad/physics"
	"github.com/TFMV/graphpad/render"
)

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	name    string
	width   float64
	height  float64
	radius  float64
	store   *graph.Store
	machine *interaction.Machine
	engine  *analytics.Engine
	layout  physics.LayoutAlgorithm
	logger  *zap.Logger

	observers *fanout
}

type options struct {
	name      string
	width     float64
	height    float64
	scheduler interaction.Scheduler
	logger    *zap.Logger
	layout    physics.LayoutAlgorithm
	threshold time.Duration
	radius    float64
	seed      int64
}

// Option configures a Session.
type Option func(*options)

// WithName sets the graph name shown in views.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithCanvas sets the drawing area.
func WithCanvas(width, height float64) Option {
	return func(o *options) { o.width, o.height = width, height }
}

// WithScheduler sets the machine's timer source.
func WithScheduler(s interaction.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLayout replaces the default force-directed layout.
func WithLayout(l physics.LayoutAlgorithm) Option {
	return func(o *options) { o.layout = l }
}

// WithDragThreshold sets the press duration that starts an edge drag.
func WithDragThreshold(d time.Duration) Option {
	return func(o *options) { o.threshold = d }
}

// WithDropRadius sets the radius used to find the node under a release.
func WithDropRadius(r float64) Option {
	return func(o *options) { o.radius = r }
}

// WithSeed seeds the default layout.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// New creates a session around store. A nil store starts an empty graph.
func New(store *graph.Store, opts ...Option) *Session {
	o := options{
		name:      "graph",
		width:     800,
		height:    600,
		scheduler: interaction.SystemScheduler{},
		logger:    zap.NewNop(),
		threshold: interaction.DefaultDragThreshold,
		radius:    interaction.DefaultDropRadius,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.layout == nil {
		o.layout = physics.NewForceDirectedLayout(o.width, o.height, o.seed)
	}
	if store == nil {
		store = graph.NewStore()
	}

	s := &Session{
		name:      o.name,
		width:     o.width,
		height:    o.height,
		radius:    o.radius,
		store:     store,
		engine:    analytics.NewEngine(store),
		layout:    o.layout,
		logger:    o.logger,
		observers: &fanout{},
	}
	s.machine = interaction.NewMachine(store,
		interaction.WithScheduler(&lockedScheduler{inner: o.scheduler, mu: &s.mu}),
		interaction.WithObserver(s.observers),
		interaction.WithLogger(o.logger.Named("interaction")),
		interaction.WithDragThreshold(o.threshold),
		interaction.WithDropRadius(o.radius),
	)
	return s
}

// Name returns the graph name.
func (s *Session) Name() string { return s.name }

// Subscribe registers an observer for node, edge and rejection notifications.
// Observers run under the session lock and must not call back into the session.
// The returned function removes the observer.
func (s *Session) Subscribe(o interaction.Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.observers.add(o)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers.remove(id)
	}
}

// Press starts a gesture on nodeID.
func (s *Session) Press(nodeID string, pos graph.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Press(nodeID, pos)
}

// PressAt starts a gesture on whatever node lies under pos. It reports
// false when pos is on empty canvas.
func (s *Session) PressAt(pos graph.Position) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.store.NodeAt(pos.X, pos.Y, s.radius)
	if !ok {
		return false, nil
	}
	return true, s.machine.Press(n.ID, pos)
}

// Move feeds a pointer move to the machine.
func (s *Session) Move(pos graph.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Move(pos)
}

// Release ends the current gesture.
func (s *Session) Release(pos graph.Position) interaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Release(pos)
}

// Click handles a click. An empty hitNodeID is resolved against the drop
// radius, so a click on an existing node never adds another.
func (s *Session) Click(pos graph.Position, hitNodeID string) (interaction.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hitNodeID == "" {
		if n, ok := s.store.NodeAt(pos.X, pos.Y, s.radius); ok {
			hitNodeID = n.ID
		}
	}
	return s.machine.Click(pos, hitNodeID)
}

// Cancel abandons the current gesture.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Cancel()
}

// State returns the machine state.
func (s *Session) State() interaction.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Stats summarizes the graph with a histogram of bucketCount buckets.
func (s *Session) Stats(bucketCount int) (analytics.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Summarize(bucketCount)
}

// Histogram returns the degree histogram.
func (s *Session) Histogram(bucketCount int) ([]analytics.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DegreeHistogram(bucketCount)
}

// Counts returns the node and edge counts.
func (s *Session) Counts() (nodes, edges int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.NodeCount(), s.store.EdgeCount()
}

// View returns a copy of the graph for rendering.
func (s *Session) View() *models.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.NewGraph(s.name, s.store, s.width, s.height)
}

// Render draws the graph with options, adding the drag line while an edge
// drag is in progress. options is not modified.
func (s *Session) Render(options *render.OutputOptions) ([]byte, error) {
	s.mu.Lock()
	view := models.NewGraph(s.name, s.store, s.width, s.height)
	opts := *options
	opts.Width, opts.Height = s.width, s.height
	if s.machine.State() == interaction.DraggingEdge {
		if src, ok := s.store.Node(s.machine.Source()); ok {
			opts.DragLine = &render.DragLine{From: src.Position(), To: s.machine.Pointer()}
		}
	}
	s.mu.Unlock()

	return render.GenerateWithOptions(view, &opts)
}

// Snapshot exports the graph in the load format.
func (s *Session) Snapshot() graph.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Tick runs up to steps layout iterations and reports whether the layout settled.
func (s *Session) Tick(ctx context.Context, steps int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stable, err := physics.Run(ctx, s.layout, s.store, steps)
	if err != nil {
		s.logger.Warn("layout interrupted", zap.Error(err))
		return stable, err
	}
	s.logger.Debug("layout step",
		zap.String("layout", s.layout.GetName()),
		zap.Int("steps", steps),
		zap.Bool("stable", stable))
	return stable, nil
}

// lockedScheduler runs timer callbacks under the session lock.
type lockedScheduler struct {
	inner interaction.Scheduler
	mu    *sync.Mutex
}

func (l *lockedScheduler) Now() time.Time { return l.inner.Now() }

func (l *lockedScheduler) AfterFunc(d time.Duration, f func()) interaction.Timer {
	return l.inner.AfterFunc(d, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		f()
	})
}
