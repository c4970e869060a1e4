package cascade

import "sort"

// Tree is the adjacency view of a cascade, keyed by parent user id.
type Tree struct {
	c        *Cascade
	children map[int64][]int64
}

// Tree derives the parent -> children view. Children are ordered by event order.
func (c *Cascade) Tree() *Tree {
	ch := make(map[int64][]int64, len(c.events)+1)
	for _, e := range c.events {
		ch[e.ParentUserID] = append(ch[e.ParentUserID], e.UserID)
	}
	return &Tree{c: c, children: ch}
}

func (t *Tree) Root() int64 { return t.c.root }

// Children returns a copy of the direct children of user.
func (t *Tree) Children(user int64) []int64 {
	out := make([]int64, len(t.children[user]))
	copy(out, t.children[user])
	return out
}

// Parent returns the parent of a non-root user.
func (t *Tree) Parent(user int64) (int64, bool) {
	e, ok := t.c.Event(user)
	if !ok {
		return 0, false
	}
	return e.ParentUserID, true
}

// Depth returns the hop count to the root, or -1 for unknown users.
func (t *Tree) Depth(user int64) int {
	if user == t.c.root {
		return 0
	}
	e, ok := t.c.Event(user)
	if !ok {
		return -1
	}
	return e.Depth
}

// Leaves lists event users without children, ascending.
func (t *Tree) Leaves() []int64 {
	var out []int64
	for _, e := range t.c.events {
		if len(t.children[e.UserID]) == 0 {
			out = append(out, e.UserID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges calls fn for every parent -> child link in event order.
func (t *Tree) Edges(fn func(parent, child int64)) {
	for _, e := range t.c.events {
		fn(e.ParentUserID, e.UserID)
	}
}
