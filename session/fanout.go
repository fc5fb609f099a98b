package session

import (
	"github.com/TFMV/graphpad/graph"
	"github.com/TFMV/graphpad/interaction"
)

type subscriber struct {
	id int
	o  interaction.Observer
}

// fanout forwards machine notifications to every subscriber in
// registration order. Callers hold the session lock.
type fanout struct {
	next int
	subs []subscriber
}

func (f *fanout) add(o interaction.Observer) int {
	f.next++
	f.subs = append(f.subs, subscriber{id: f.next, o: o})
	return f.next
}

func (f *fanout) remove(id int) {
	for i, s := range f.subs {
		if s.id == id {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}

func (f *fanout) NodeAdded(n graph.Node) {
	for _, s := range f.subs {
		s.o.NodeAdded(n)
	}
}

func (f *fanout) EdgeAdded(e graph.Edge) {
	for _, s := range f.subs {
		s.o.EdgeAdded(e)
	}
}

func (f *fanout) Rejected(err error) {
	for _, s := range f.subs {
		s.o.Rejected(err)
	}
}

func (f *fanout) DragStarted(src graph.Node) {
	for _, s := range f.subs {
		if d, ok := s.o.(interaction.DragObserver); ok {
			d.DragStarted(src)
		}
	}
}

func (f *fanout) DragMoved(src graph.Node, pos graph.Position) {
	for _, s := range f.subs {
		if d, ok := s.o.(interaction.DragObserver); ok {
			d.DragMoved(src, pos)
		}
	}
}

func (f *fanout) DragEnded(src graph.Node) {
	for _, s := range f.subs {
		if d, ok := s.o.(interaction.DragObserver); ok {
			d.DragEnded(src)
		}
	}
}
