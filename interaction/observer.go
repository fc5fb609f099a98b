package interaction

import (
	"github.com/TFMV/graphpad/graph"
)

// Observer receives notifications after the machine changes the graph or
// turns down a gesture. Implementations must not call back into the machine.
type Observer interface {
	NodeAdded(n graph.Node)
	EdgeAdded(e graph.Edge)
	Rejected(reason error)
}

// DragObserver is optionally implemented by observers that draw the
// transient edge while a drag is in progress.
type DragObserver interface {
	DragStarted(source graph.Node)
	DragMoved(source graph.Node, pos graph.Position)
	DragEnded(source graph.Node)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) NodeAdded(graph.Node) {}
func (NopObserver) EdgeAdded(graph.Edge) {}
func (NopObserver) Rejected(error)       {}
