package classifier

import (
	"context"
	"errors"
	"fmt"

	"cascadeforecast/internal/store/sqlitevec"
)

// LoadSamples reads the trainable samples for k from SQLite.
func LoadSamples(ctx context.Context, db *sqlitevec.DB, k int) ([]Sample, error) {
	rows, err := db.LoadSamples(ctx, k, true)
	if err != nil { return nil, err }
	out := make([]Sample, 0, len(rows))
	for _, r := range rows {
		out = append(out, Sample{ID: r.MessageID, K: r.K, X: r.Vector, Y: []float64{float64(r.Label)}})
	}
	return out, nil
}

// ErrSingleClass means the train split holds only one label, so there is nothing to learn.
var ErrSingleClass = errors.New("train split has a single label class")

// TrainResult counts what TrainFromDB did.
type TrainResult struct {
	Train     int
	Test      int
	Positives int
	// Correct counts test samples whose thresholded score matches the label.
	Correct int
}

// TrainFromDB trains clf on the train split of k's samples, scores the test
// split and stores the scores as predictions.
func TrainFromDB(ctx context.Context, db *sqlitevec.DB, clf Classifier, k int, seed uint64, testFraction float64) (TrainResult, error) {
	var res TrainResult
	samples, err := LoadSamples(ctx, db, k)
	if err != nil { return res, err }
	if len(samples) == 0 { return res, fmt.Errorf("no trainable samples for k=%d", k) }
	train, test := Split(samples, seed, testFraction)
	res.Train, res.Test = len(train), len(test)
	if len(train) == 0 { return res, fmt.Errorf("train split for k=%d is empty", k) }
	if singleClass(train) { return res, fmt.Errorf("k=%d: %w", k, ErrSingleClass) }
	if err := clf.Train(ctx, train); err != nil { return res, err }
	if len(test) == 0 { return res, nil }

	unlabeled := make([]Sample, len(test))
	for i, s := range test {
		unlabeled[i] = Sample{ID: s.ID, K: s.K, X: s.X}
	}
	scores, err := clf.Predict(ctx, unlabeled)
	if err != nil { return res, err }
	if len(scores) != len(test) {
		return res, fmt.Errorf("classifier returned %d scores for %d samples", len(scores), len(test))
	}
	err = db.InTx(ctx, func(tx *sqlitevec.DB) error {
		for i, s := range test {
			pred := 0.0
			if scores[i] >= 0.5 {
				res.Positives++
				pred = 1
			}
			if pred == s.Y[0] { res.Correct++ }
			if err := tx.PutPrediction(ctx, s.ID, s.K, scores[i]); err != nil { return err }
		}
		return nil
	})
	return res, err
}

func singleClass(samples []Sample) bool {
	for _, s := range samples[1:] {
		if s.Y[0] != samples[0].Y[0] { return false }
	}
	return true
}
