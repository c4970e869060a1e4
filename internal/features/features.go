package features

import (
	"cascadeforecast/internal/cascade"
)

// Temporal holds timing features of a prefix. All values are in seconds
// except the ratios.
type Temporal struct {
	TimeToK       float64 `json:"time_to_k"`
	MeanInterTime float64 `json:"mean_inter_time"`
	VarInterTime  float64 `json:"var_inter_time"`
	RetweetRate   float64 `json:"retweet_rate"`
	HalfLifeRatio float64 `json:"half_life_ratio"`
	SpeedChange   float64 `json:"speed_change"`
}

// Structural holds shape features of a prefix tree. The root has depth 0 and
// is excluded from Depth, AvgDepth, Leaves and MaxBreadth. WienerRootAvg is
// the mean distance from the root over every node, the root included.
type Structural struct {
	Depth           float64 `json:"depth"`
	Leaves          float64 `json:"leaves"`
	AvgDepth        float64 `json:"avg_depth"`
	WienerRootAvg   float64 `json:"wiener_root_avg"`
	MaxBreadth      float64 `json:"max_breadth"`
	BranchingFactor float64 `json:"branching_factor"`
	NumNodes        float64 `json:"num_nodes"`
}

// FeatureVector is produced once per (cascade, k).
type FeatureVector struct {
	CascadeID  int64      `json:"cascade_id"`
	K          int        `json:"k"`
	Temporal   Temporal   `json:"temporal"`
	Structural Structural `json:"structural"`
}

var names = []string{
	"time_to_k", "mean_inter_time", "var_inter_time", "retweet_rate", "half_life_ratio", "speed_change",
	"depth", "leaves", "avg_depth", "wiener_root_avg", "max_breadth", "branching_factor", "num_nodes",
}

// Names lists the columns of Values, in order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Values flattens the vector in Names order.
func (fv FeatureVector) Values() []float64 {
	t, s := fv.Temporal, fv.Structural
	return []float64{
		t.TimeToK, t.MeanInterTime, t.VarInterTime, t.RetweetRate, t.HalfLifeRatio, t.SpeedChange,
		s.Depth, s.Leaves, s.AvgDepth, s.WienerRootAvg, s.MaxBreadth, s.BranchingFactor, s.NumNodes,
	}
}

// Map keys Values by name.
func (fv FeatureVector) Map() map[string]float64 {
	v := fv.Values()
	out := make(map[string]float64, len(v))
	for i, n := range names {
		out[n] = v[i]
	}
	return out
}

// Extract computes the feature vector of a prefix cascade. It reads nothing
// but the prefix itself.
func Extract(prefix *cascade.Cascade) FeatureVector {
	return FeatureVector{
		CascadeID:  prefix.MessageID(),
		K:          prefix.Len(),
		Temporal:   TemporalFeatures(prefix),
		Structural: StructuralFeatures(prefix),
	}
}
