// Package interaction turns pointer events into graph mutations.
//
// A press on a node arms a short timer. If the pointer is still down when it
// fires, the gesture becomes an edge drag; releasing over another node then
// asks the store for the edge. Releasing before the timer fires is an
// ordinary click. Clicking empty canvas adds a node.
//
// A Machine is single-threaded. With SystemScheduler the timer callback runs
// on another goroutine, so callers sharing a Machine must route callbacks
// through the same lock as their own calls (package session does this).
package interaction

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TFMV/graphpad/graph"
)

// ErrGestureInProgress is returned by Press while another gesture is active.
var ErrGestureInProgress = errors.New("interaction: a gesture is already in progress")

const (
	// DefaultDragThreshold is how long a press must be held before it becomes a drag.
	DefaultDragThreshold = 5 * time.Millisecond

	// DefaultDropRadius is the distance within which a release lands on a node.
	DefaultDropRadius = 5.0
)

// State is the machine's gesture state.
type State int

const (
	Idle State = iota
	Pressed
	DraggingEdge
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case DraggingEdge:
		return "dragging-edge"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome says what a Release or Click did.
type Outcome int

const (
	// OutcomeNone means the event had no effect.
	OutcomeNone Outcome = iota
	// OutcomeClicked means a press was released before it became a drag.
	OutcomeClicked
	// OutcomeEdgeCreated means a drag ended on a node and the edge was added.
	OutcomeEdgeCreated
	// OutcomeRejected means the store refused the edge; Result.Err says why.
	OutcomeRejected
	// OutcomeDiscarded means a drag ended away from every node.
	OutcomeDiscarded
	// OutcomeNodeAdded means a canvas click created a node.
	OutcomeNodeAdded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeClicked:
		return "clicked"
	case OutcomeEdgeCreated:
		return "edge-created"
	case OutcomeRejected:
		return "rejected"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeNodeAdded:
		return "node-added"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes the effect of a Release or Click.
type Result struct {
	Outcome Outcome
	Edge    graph.Edge
	NodeID  string
	Err     error
}

// Machine is the edge-creation state machine.
type Machine struct {
	store     *graph.Store
	scheduler Scheduler
	observer  Observer
	logger    *zap.Logger

	threshold time.Duration
	radius    float64

	state     State
	source    string
	pressedAt time.Time
	pos       graph.Position
	timer     Timer
	gen       uint64
}

// Option configures a Machine.
type Option func(*Machine)

// WithScheduler sets the clock and timer source. Defaults to SystemScheduler.
func WithScheduler(s Scheduler) Option {
	return func(m *Machine) { m.scheduler = s }
}

// WithObserver sets the notification sink.
func WithObserver(o Observer) Option {
	return func(m *Machine) { m.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithDragThreshold sets how long a press is held before it turns into a drag.
func WithDragThreshold(d time.Duration) Option {
	return func(m *Machine) { m.threshold = d }
}

// WithDropRadius sets the target-resolution radius.
func WithDropRadius(r float64) Option {
	return func(m *Machine) { m.radius = r }
}

// NewMachine creates an idle machine over store.
func NewMachine(store *graph.Store, opts ...Option) *Machine {
	m := &Machine{
		store:     store,
		scheduler: SystemScheduler{},
		observer:  NopObserver{},
		logger:    zap.NewNop(),
		threshold: DefaultDragThreshold,
		radius:    DefaultDropRadius,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.scheduler == nil {
		m.scheduler = SystemScheduler{}
	}
	if m.observer == nil {
		m.observer = NopObserver{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// State returns the current gesture state.
func (m *Machine) State() State { return m.state }

// Source returns the node the current gesture started on, or "" when idle.
func (m *Machine) Source() string { return m.source }

// PressedAt returns when the current gesture started.
func (m *Machine) PressedAt() time.Time { return m.pressedAt }

// Pointer returns the last pointer position seen during a drag.
func (m *Machine) Pointer() graph.Position { return m.pos }

// Press starts a gesture on nodeID.
func (m *Machine) Press(nodeID string, pos graph.Position) error {
	if m.state != Idle {
		m.logger.Debug("press ignored",
			zap.String("node", nodeID),
			zap.Stringer("state", m.state))
		return ErrGestureInProgress
	}
	if !m.store.HasNode(nodeID) {
		return fmt.Errorf("press: %w: %q", graph.ErrUnknownNode, nodeID)
	}

	m.gen++
	gen := m.gen
	m.state = Pressed
	m.source = nodeID
	m.pressedAt = m.scheduler.Now()
	m.pos = pos
	m.timer = m.scheduler.AfterFunc(m.threshold, func() { m.expire(gen) })
	return nil
}

// expire is the timer callback. A stale generation means the gesture it was
// armed for has already ended.
func (m *Machine) expire(gen uint64) {
	if gen != m.gen || m.state != Pressed {
		return
	}
	m.timer = nil

	src, ok := m.store.Node(m.source)
	if !ok {
		m.reset()
		return
	}
	m.state = DraggingEdge
	m.pos = src.Position()
	_ = m.store.SetActive(src.ID, true)

	m.logger.Debug("edge drag started",
		zap.String("source", src.ID),
		zap.Duration("held", m.scheduler.Now().Sub(m.PressedAt())))
	if d, ok := m.observer.(DragObserver); ok {
		d.DragStarted(src)
	}
}

// Move tracks the pointer. Only a drag records the position.
func (m *Machine) Move(pos graph.Position) {
	if m.state != DraggingEdge {
		return
	}
	m.pos = pos
	if d, ok := m.observer.(DragObserver); ok {
		if src, found := m.store.Node(m.source); found {
			d.DragMoved(src, pos)
		}
	}
}

// Release ends the current gesture at pos.
func (m *Machine) Release(pos graph.Position) Result {
	switch m.state {
	case Pressed:
		if m.timer != nil {
			m.timer.Stop()
		}
		m.reset()
		return Result{Outcome: OutcomeClicked}
	case DraggingEdge:
		return m.finishDrag(pos)
	default:
		return Result{Outcome: OutcomeNone}
	}
}

func (m *Machine) finishDrag(pos graph.Position) Result {
	source := m.source
	src, _ := m.store.Node(source)
	_ = m.store.SetActive(source, false)
	m.reset()
	if d, ok := m.observer.(DragObserver); ok {
		d.DragEnded(src)
	}

	target, found := m.store.NodeAt(pos.X, pos.Y, m.radius)
	if !found {
		m.logger.Debug("edge drag discarded", zap.String("source", source))
		return Result{Outcome: OutcomeDiscarded}
	}

	edge, err := m.store.TryAddEdge(source, target.ID)
	if err != nil {
		m.logger.Info("edge rejected",
			zap.String("source", source),
			zap.String("target", target.ID),
			zap.Error(err))
		m.observer.Rejected(err)
		return Result{Outcome: OutcomeRejected, Err: err}
	}

	m.logger.Info("edge created",
		zap.String("source", edge.Source),
		zap.String("target", edge.Target))
	m.observer.EdgeAdded(edge)
	return Result{Outcome: OutcomeEdgeCreated, Edge: edge}
}

// Click handles a complete click at pos. hitNodeID is the node under the
// pointer, or "" for empty canvas. Only an idle click on empty canvas adds a node.
func (m *Machine) Click(pos graph.Position, hitNodeID string) (Result, error) {
	if m.state != Idle || hitNodeID != "" {
		return Result{Outcome: OutcomeNone}, nil
	}
	id, err := m.store.AddNode(pos)
	if err != nil {
		return Result{}, fmt.Errorf("click: %w", err)
	}
	n, _ := m.store.Node(id)
	m.logger.Info("node added",
		zap.String("node", id),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y))
	m.observer.NodeAdded(n)
	return Result{Outcome: OutcomeNodeAdded, NodeID: id}, nil
}

// Cancel abandons any gesture without touching the graph.
func (m *Machine) Cancel() {
	if m.timer != nil {
		m.timer.Stop()
	}
	if m.state == DraggingEdge {
		_ = m.store.SetActive(m.source, false)
		if d, ok := m.observer.(DragObserver); ok {
			if src, found := m.store.Node(m.source); found {
				d.DragEnded(src)
			}
		}
	}
	m.reset()
}

func (m *Machine) reset() {
	m.gen++
	m.state = Idle
	m.source = ""
	m.pressedAt = time.Time{}
	m.pos = graph.Position{}
	m.timer = nil
}
