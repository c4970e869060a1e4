package cascade

import (
	"sort"
	"time"
)

// RetweetEvent is one user's retweet inside a cascade.
// ParentUserID is the root user for direct retweets; the root itself is never an event.
type RetweetEvent struct {
	UserID         int64
	ParentUserID   int64
	Depth          int
	ElapsedSeconds int64
}

// Record is one tokenized input line: the cascade header plus its raw retweet paths.
type Record struct {
	MessageID            int64
	RootUserID           int64
	PublishTime          int64 // unix seconds
	DeclaredRetweetCount int
	Paths                []string
}

// Cascade is an immutable retweet cascade. Events are kept ordered by
// elapsed time, ties broken by user id, with at most one event per user.
type Cascade struct {
	messageID int64
	root      int64
	publish   int64
	declared  int
	events    []RetweetEvent
	byUser    map[int64]int
}

// New builds a cascade from already validated events. The slice is copied.
func New(messageID, root, publishTime int64, declared int, events []RetweetEvent) *Cascade {
	evs := make([]RetweetEvent, len(events))
	copy(evs, events)
	sort.Slice(evs, func(i, j int) bool { return Less(evs[i], evs[j]) })
	idx := make(map[int64]int, len(evs))
	for i, e := range evs {
		idx[e.UserID] = i
	}
	return &Cascade{messageID: messageID, root: root, publish: publishTime, declared: declared, events: evs, byUser: idx}
}

// Less orders events chronologically with user id as the tie-break.
func Less(a, b RetweetEvent) bool {
	if a.ElapsedSeconds != b.ElapsedSeconds {
		return a.ElapsedSeconds < b.ElapsedSeconds
	}
	return a.UserID < b.UserID
}

func (c *Cascade) MessageID() int64 { return c.messageID }

func (c *Cascade) Root() int64 { return c.root }

// PublishUnix returns the publish time in unix seconds.
func (c *Cascade) PublishUnix() int64 { return c.publish }

func (c *Cascade) PublishTime() time.Time { return time.Unix(c.publish, 0).UTC() }

func (c *Cascade) DeclaredRetweetCount() int { return c.declared }

// Len is the number of retweet events (the root is not counted).
func (c *Cascade) Len() int { return len(c.events) }

// Events returns a copy of the ordered events.
func (c *Cascade) Events() []RetweetEvent {
	out := make([]RetweetEvent, len(c.events))
	copy(out, c.events)
	return out
}

// EventAt returns the i-th event in chronological order.
func (c *Cascade) EventAt(i int) RetweetEvent { return c.events[i] }

// Event looks up the event of a user.
func (c *Cascade) Event(user int64) (RetweetEvent, bool) {
	i, ok := c.byUser[user]
	if !ok {
		return RetweetEvent{}, false
	}
	return c.events[i], true
}

// Contains reports whether user is the root or has an event.
func (c *Cascade) Contains(user int64) bool {
	if user == c.root {
		return true
	}
	_, ok := c.byUser[user]
	return ok
}

// SameAs compares cascades by message id.
func (c *Cascade) SameAs(o *Cascade) bool {
	return o != nil && c.messageID == o.messageID
}
