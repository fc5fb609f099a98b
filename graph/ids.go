package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator produces candidate ids for new nodes. The store rejects
// candidates that collide with existing ids and asks again.
type IDGenerator interface {
	NextID() string
}

// UUIDGenerator names clicked nodes "customNode-<uuid>".
type UUIDGenerator struct{}

// NextID returns a new random id.
func (UUIDGenerator) NextID() string {
	return "customNode-" + uuid.New().String()
}

// SequenceGenerator yields Prefix1, Prefix2, ... Useful for reproducible ids.
type SequenceGenerator struct {
	Prefix string
	next   int
}

// NextID returns the next id in the sequence.
func (g *SequenceGenerator) NextID() string {
	g.next++
	return fmt.Sprintf("%s%d", g.Prefix, g.next)
}
