// Package timeline resolves a tree of nested sequence windows into per-node
// local frames. The tree is flattened once at build time so that resolving a
// frame is a single pass over an array with no recursion.
package timeline

import (
	"fmt"

	"github.com/ivlev/framegen/internal/animation"
)

// Overflow decides what a node shows outside its own window.
type Overflow int

const (
	// Hide marks the node invisible outside its window.
	Hide Overflow = iota
	// FreezeBefore holds local frame 0 before the window starts.
	FreezeBefore
	// FreezeAfter holds the last local frame after the window ends.
	FreezeAfter
	// FreezeBoth applies FreezeBefore and FreezeAfter.
	FreezeBoth
)

func (o Overflow) String() string {
	switch o {
	case Hide:
		return "hide"
	case FreezeBefore:
		return "freeze-before"
	case FreezeAfter:
		return "freeze-after"
	case FreezeBoth:
		return "freeze-both"
	}
	return fmt.Sprintf("Overflow(%d)", int(o))
}

// ParseOverflow parses an overflow policy name. The empty string is Hide.
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "", "hide":
		return Hide, nil
	case "freeze-before":
		return FreezeBefore, nil
	case "freeze-after":
		return FreezeAfter, nil
	case "freeze-both":
		return FreezeBoth, nil
	}
	return Hide, animation.NewConfigError(animation.ErrInvalidSequenceWindow, "overflow", "unknown policy %q", s)
}

// Node is one sequence window. From is relative to the parent's start.
// Children are painted in order, later children above earlier ones.
type Node struct {
	ID       string
	From     int
	Duration int
	Overflow Overflow
	// AllowNegativeFrom permits starting before the parent.
	AllowNegativeFrom bool
	Children          []Node
}

// State is the resolution of one node at one global frame.
type State struct {
	ID         string
	LocalFrame int
	// Visible reports whether the node's own window (after overflow policy)
	// covers the frame.
	Visible bool
	// Rendered is Visible for the node and all of its ancestors.
	Rendered bool
	Depth    int
	// Layer is the paint order; higher layers are drawn later.
	Layer int
}

type entry struct {
	id       string
	offset   int
	duration int
	overflow Overflow
	depth    int
	parent   int
}

// Tree is a flattened, immutable sequence tree. Entries are stored in
// pre-order, which is also the paint order, and every parent precedes its
// children.
type Tree struct {
	entries []entry
	index   map[string]int
	end     int
}

// Build validates the tree rooted at root and flattens it.
func Build(root Node) (*Tree, error) {
	t := &Tree{index: make(map[string]int)}
	if err := t.add(root, -1, 0, 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) add(n Node, parent, parentOffset, depth int) error {
	if n.ID == "" {
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "id", "sequence id must not be empty")
	}
	if _, dup := t.index[n.ID]; dup {
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "id", "duplicate sequence id %q", n.ID)
	}
	if n.Duration <= 0 {
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, n.ID, "durationFrames must be > 0, got %d", n.Duration)
	}
	if n.From < 0 && !n.AllowNegativeFrom {
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, n.ID, "negative from %d is not allowed", n.From)
	}
	if n.Overflow < Hide || n.Overflow > FreezeBoth {
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, n.ID, "unknown overflow policy %d", int(n.Overflow))
	}

	idx := len(t.entries)
	offset := parentOffset + n.From
	t.entries = append(t.entries, entry{
		id:       n.ID,
		offset:   offset,
		duration: n.Duration,
		overflow: n.Overflow,
		depth:    depth,
		parent:   parent,
	})
	t.index[n.ID] = idx
	if end := offset + n.Duration; end > t.end {
		t.end = end
	}

	for _, child := range n.Children {
		if err := t.add(child, idx, offset, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.entries)
}

// Duration returns the global frame at which the last window ends.
func (t *Tree) Duration() int {
	return t.end
}

// IDs returns node IDs in paint order.
func (t *Tree) IDs() []string {
	ids := make([]string, len(t.entries))
	for i, e := range t.entries {
		ids[i] = e.id
	}
	return ids
}

// Offset returns the global start frame of a node.
func (t *Tree) Offset(id string) (int, bool) {
	i, ok := t.index[id]
	if !ok {
		return 0, false
	}
	return t.entries[i].offset, true
}

// Resolve maps every node ID to its state at globalFrame.
func (t *Tree) Resolve(globalFrame int) map[string]State {
	states := t.ResolveInto(globalFrame, nil)
	out := make(map[string]State, len(states))
	for _, s := range states {
		out[s.ID] = s
	}
	return out
}

// ResolveInto appends the state of every node in paint order to dst[:0] and
// returns it. Passing a reused slice makes resolution allocation free.
func (t *Tree) ResolveInto(globalFrame int, dst []State) []State {
	dst = dst[:0]
	for i, e := range t.entries {
		s := e.resolve(globalFrame)
		s.Layer = i
		s.Rendered = s.Visible
		if e.parent >= 0 {
			s.Rendered = s.Visible && dst[e.parent].Rendered
		}
		dst = append(dst, s)
	}
	return dst
}

// Lookup resolves a single node. Rendered needs the ancestor chain, which is
// walked through the parent indices.
func (t *Tree) Lookup(id string, globalFrame int) (State, bool) {
	i, ok := t.index[id]
	if !ok {
		return State{}, false
	}
	s := t.entries[i].resolve(globalFrame)
	s.Layer = i
	s.Rendered = s.Visible
	for p := t.entries[i].parent; p >= 0 && s.Rendered; p = t.entries[p].parent {
		s.Rendered = t.entries[p].resolve(globalFrame).Visible
	}
	return s, true
}

func (e entry) resolve(globalFrame int) State {
	s := State{ID: e.id, Depth: e.depth, LocalFrame: globalFrame - e.offset}
	switch {
	case s.LocalFrame < 0:
		if e.overflow == FreezeBefore || e.overflow == FreezeBoth {
			s.LocalFrame = 0
			s.Visible = true
		}
	case s.LocalFrame >= e.duration:
		if e.overflow == FreezeAfter || e.overflow == FreezeBoth {
			s.LocalFrame = e.duration - 1
			s.Visible = true
		}
	default:
		s.Visible = true
	}
	return s
}
