package cascade

import (
	"errors"
	"testing"
)

func rec(paths ...string) Record {
	return Record{MessageID: 7, RootUserID: 1, PublishTime: 1700000000, DeclaredRetweetCount: len(paths), Paths: paths}
}

func TestBuildExample(t *testing.T) {
	c, anomalies, err := Build(rec("1/2:10", "1/3:20", "1/2/4:30"))
	if err != nil { t.Fatal(err) }
	if len(anomalies) != 0 { t.Fatalf("unexpected anomalies: %v", anomalies) }
	want := []RetweetEvent{
		{UserID: 2, ParentUserID: 1, Depth: 1, ElapsedSeconds: 10},
		{UserID: 3, ParentUserID: 1, Depth: 1, ElapsedSeconds: 20},
		{UserID: 4, ParentUserID: 2, Depth: 2, ElapsedSeconds: 30},
	}
	got := c.Events()
	if len(got) != len(want) { t.Fatalf("events: %v", got) }
	for i := range want {
		if got[i] != want[i] { t.Fatalf("event %d: got %+v want %+v", i, got[i], want[i]) }
	}
	if c.Root() != 1 || c.MessageID() != 7 || c.DeclaredRetweetCount() != 3 {
		t.Fatalf("header mismatch")
	}
	if c.PublishTime().Unix() != 1700000000 { t.Fatalf("publish time %v", c.PublishTime()) }
}

func TestBuildKeepsEarliestTerminal(t *testing.T) {
	c, _, err := Build(rec("1/3:5", "1/2:100", "1/3/2:50"))
	if err != nil { t.Fatal(err) }
	e, ok := c.Event(2)
	if !ok { t.Fatal("user 2 missing") }
	if e.ElapsedSeconds != 50 || e.ParentUserID != 3 || e.Depth != 2 {
		t.Fatalf("dedup kept wrong occurrence: %+v", e)
	}
	if c.Len() != 2 { t.Fatalf("expected 2 events, got %d", c.Len()) }
}

func TestBuildTieKeepsFirstPath(t *testing.T) {
	c, _, err := Build(rec("1/2:5", "1/3:5", "1/3/4:9", "1/2/4:9"))
	if err != nil { t.Fatal(err) }
	e, _ := c.Event(4)
	if e.ParentUserID != 3 { t.Fatalf("expected parent from first path, got %d", e.ParentUserID) }
}

func TestBuildEmpty(t *testing.T) {
	c, anomalies, err := Build(rec())
	if err != nil { t.Fatal(err) }
	if c.Len() != 0 || len(anomalies) != 0 { t.Fatalf("expected empty cascade") }
}

func TestBuildRootPathAndImplicitRoot(t *testing.T) {
	c, anomalies, err := Build(rec("1:0", "2:10", "2/5:12"))
	if err != nil { t.Fatal(err) }
	if len(anomalies) != 0 { t.Fatalf("unexpected anomalies: %v", anomalies) }
	if !c.Contains(1) || c.Len() != 2 { t.Fatalf("events: %v", c.Events()) }
	e, _ := c.Event(5)
	if e.ParentUserID != 2 || e.Depth != 2 { t.Fatalf("got %+v", e) }
}

func TestBuildSkipsMalformedPaths(t *testing.T) {
	c, anomalies, err := Build(rec("1/x:10", "1/2", "1/3:abc", "1/4:-1", "1/5:7"))
	if err != nil { t.Fatal(err) }
	if c.Len() != 1 { t.Fatalf("expected only user 5, got %v", c.Events()) }
	n := 0
	for _, a := range anomalies {
		if a.Kind == MalformedPath { n++ }
	}
	if n != 4 { t.Fatalf("expected 4 malformed path anomalies, got %v", anomalies) }
}

func TestBuildRepeatedUserInPath(t *testing.T) {
	c, anomalies, err := Build(rec("1/2:4", "1/2/3:8", "1/2/3/2/6:20"))
	if err != nil { t.Fatal(err) }
	if len(anomalies) != 1 || anomalies[0].Kind != MalformedPath { t.Fatalf("anomalies: %v", anomalies) }
	e, ok := c.Event(6)
	if !ok || e.ParentUserID != 3 || e.Depth != 3 { t.Fatalf("expected 6 under 3, got %+v", e) }
}

func TestBuildIntermediateOnlyUserIsNotAnEvent(t *testing.T) {
	c, anomalies, err := Build(rec("1/2:4", "1/2/3/6:20"))
	if err != nil { t.Fatal(err) }
	if _, ok := c.Event(3); ok { t.Fatal("hop-only user must not become an event") }
	if _, ok := c.Event(6); ok { t.Fatal("user below a hop-only user cannot reach the root") }
	if len(anomalies) != 1 || anomalies[0].Kind != OrphanUser || anomalies[0].UserID != 6 {
		t.Fatalf("anomalies: %v", anomalies)
	}
}

func TestBuildDropsOrphans(t *testing.T) {
	c, anomalies, err := Build(rec("1/2:10", "1/9/3:20", "1/9/3/4:25"))
	if err != nil { t.Fatal(err) }
	if c.Len() != 1 { t.Fatalf("expected only user 2, got %v", c.Events()) }
	orphans := map[int64]bool{}
	for _, a := range anomalies {
		if a.Kind != OrphanUser { t.Fatalf("unexpected anomaly %v", a) }
		orphans[a.UserID] = true
	}
	if !orphans[3] || !orphans[4] { t.Fatalf("expected 3 and 4 orphaned, got %v", anomalies) }
}

func TestBuildCycle(t *testing.T) {
	_, anomalies, err := Build(rec("1/3/2:10", "1/2/3:11"))
	if !errors.Is(err, ErrCycleDetected) { t.Fatalf("expected cycle error, got %v", err) }
	if len(anomalies) == 0 || anomalies[len(anomalies)-1].Kind != CycleDetected {
		t.Fatalf("cycle not reported: %v", anomalies)
	}
}

func TestTreeView(t *testing.T) {
	c, _, _ := Build(rec("1/2:10", "1/3:20", "1/2/4:30", "1/2/5:31"))
	tr := c.Tree()
	if got := tr.Children(2); len(got) != 2 || got[0] != 4 || got[1] != 5 { t.Fatalf("children of 2: %v", got) }
	if got := tr.Leaves(); len(got) != 3 || got[0] != 3 || got[1] != 4 || got[2] != 5 { t.Fatalf("leaves: %v", got) }
	if p, ok := tr.Parent(5); !ok || p != 2 { t.Fatalf("parent of 5: %d", p) }
	if tr.Depth(1) != 0 || tr.Depth(5) != 2 || tr.Depth(42) != -1 { t.Fatal("depth lookup") }
	tr.Edges(func(parent, child int64) {
		if tr.Depth(child) != tr.Depth(parent)+1 { t.Fatalf("depth not monotone at %d", child) }
	})
}
