package prefix

import "cascadeforecast/internal/cascade"

// Prefix returns a new cascade holding the first k events by elapsed time
// (ties by user id). The bool is false when c has fewer than k events; the
// full cascade is returned in that case and callers should not use the
// (cascade, k) pair for training.
//
// Retained events whose parent was cut are attached to their nearest retained
// ancestor, or to the root, and depths are recounted along the new chain.
func Prefix(c *cascade.Cascade, k int) (*cascade.Cascade, bool) {
	if k < 0 {
		k = 0
	}
	n := c.Len()
	sufficient := n >= k
	if n > k {
		n = k
	}

	// Events are stored chronologically, so the first n are the prefix.
	kept := make(map[int64]struct{}, n)
	for i := 0; i < n; i++ {
		kept[c.EventAt(i).UserID] = struct{}{}
	}

	root := c.Root()
	parent := make(map[int64]int64, n)
	for i := 0; i < n; i++ {
		e := c.EventAt(i)
		p := e.ParentUserID
		for p != root {
			if _, ok := kept[p]; ok {
				break
			}
			up, ok := c.Event(p)
			if !ok {
				p = root
				break
			}
			p = up.ParentUserID
		}
		parent[e.UserID] = p
	}

	depth := make(map[int64]int, n)
	var depthOf func(u int64) int
	depthOf = func(u int64) int {
		if u == root {
			return 0
		}
		if d, ok := depth[u]; ok {
			return d
		}
		d := depthOf(parent[u]) + 1
		depth[u] = d
		return d
	}

	events := make([]cascade.RetweetEvent, 0, n)
	for i := 0; i < n; i++ {
		e := c.EventAt(i)
		events = append(events, cascade.RetweetEvent{
			UserID:         e.UserID,
			ParentUserID:   parent[e.UserID],
			Depth:          depthOf(e.UserID),
			ElapsedSeconds: e.ElapsedSeconds,
		})
	}
	return cascade.New(c.MessageID(), root, c.PublishUnix(), c.DeclaredRetweetCount(), events), sufficient
}
