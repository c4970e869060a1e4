package cascade

import (
	"errors"
	"fmt"
)

// AnomalyKind classifies per-cascade problems found while building or prefixing.
type AnomalyKind string

const (
	MalformedRecord    AnomalyKind = "malformed_record"
	MalformedPath      AnomalyKind = "malformed_path"
	OrphanUser         AnomalyKind = "orphan_user"
	CycleDetected      AnomalyKind = "cycle_detected"
	InsufficientEvents AnomalyKind = "insufficient_events"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrMalformedPath   = errors.New("malformed path")
	ErrOrphanUser      = errors.New("orphan user")
	ErrCycleDetected   = errors.New("cycle detected")
)

// Anomaly is a recorded, non-fatal (except CycleDetected) problem.
type Anomaly struct {
	Kind      AnomalyKind
	MessageID int64
	UserID    int64
	Detail    string
}

func (a Anomaly) String() string {
	if a.UserID != 0 {
		return fmt.Sprintf("%s: cascade %d user %d: %s", a.Kind, a.MessageID, a.UserID, a.Detail)
	}
	return fmt.Sprintf("%s: cascade %d: %s", a.Kind, a.MessageID, a.Detail)
}

// AnomalyCounts tallies anomalies by kind.
type AnomalyCounts map[AnomalyKind]int

func (ac AnomalyCounts) Add(list []Anomaly) {
	for _, a := range list {
		ac[a.Kind]++
	}
}

func (ac AnomalyCounts) Merge(o AnomalyCounts) {
	for k, v := range o {
		ac[k] += v
	}
}

// Total sums all kinds.
func (ac AnomalyCounts) Total() int {
	n := 0
	for _, v := range ac {
		n += v
	}
	return n
}
