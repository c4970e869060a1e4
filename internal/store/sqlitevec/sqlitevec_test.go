package sqlitevec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSamplesRoundTripAndUpsert(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 2, K: 5, Vector: []float64{1, 2.5}, Label: 1, FinalCount: 12, Sufficient: true}, map[string]any{"root": 9}))
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 1, K: 5, Vector: []float64{3}, Label: 0, FinalCount: 3, Sufficient: false}, nil))
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 1, K: 10, Vector: []float64{4}, Sufficient: false}, nil))

	all, err := db.LoadSamples(ctx, 5, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, int64(1), all[0].MessageID)
	require.Equal(t, []float64{1, 2.5}, all[1].Vector)
	require.JSONEq(t, `{"root":9}`, all[1].Meta)

	suff, err := db.LoadSamples(ctx, 5, true)
	require.NoError(t, err)
	require.Len(t, suff, 1)

	// rerunning the same (cascade, k) replaces the row
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 2, K: 5, Vector: []float64{7}, Label: 0, FinalCount: 8, Sufficient: true}, nil))
	counts, err := db.CountSamples(ctx, false)
	require.NoError(t, err)
	require.Equal(t, map[int]int{5: 2, 10: 1}, counts)
	suff, err = db.LoadSamples(ctx, 5, true)
	require.NoError(t, err)
	require.Equal(t, []float64{7}, suff[0].Vector)
}

func TestCascadesAndAnomalies(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()
	require.NoError(t, db.PutCascade(ctx, CascadeRow{MessageID: 7, RootUserID: 1, PublishTime: 100, DeclaredCount: 4, ObservedCount: 3}))
	require.NoError(t, db.PutCascade(ctx, CascadeRow{MessageID: 7, RootUserID: 1, PublishTime: 100, DeclaredCount: 4, ObservedCount: 2, Failed: true}))
	c, err := db.GetCascade(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 2, c.ObservedCount)
	require.True(t, c.Failed)

	require.NoError(t, db.PutAnomaly(ctx, 7, "orphan_user", 3, "parent chain stops at 9"))
	require.NoError(t, db.PutAnomaly(ctx, 7, "orphan_user", 4, ""))
	require.NoError(t, db.PutAnomaly(ctx, 8, "malformed_path", 0, "bad"))
	n, err := db.CountAnomalies(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"orphan_user": 2, "malformed_path": 1}, n)

	require.NoError(t, db.ClearAnomalies(ctx, 7))
	n, err = db.CountAnomalies(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"malformed_path": 1}, n)
}

func TestDeleteSamplesAndClearKind(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 1, K: 2, Vector: []float64{1}, Sufficient: true}, nil))
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 1, K: 5, Vector: []float64{1}, Sufficient: true}, nil))
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 2, K: 2, Vector: []float64{1}, Sufficient: true}, nil))
	require.NoError(t, db.PutPrediction(ctx, 1, 2, 0.4))
	require.NoError(t, db.DeleteSamples(ctx, 1))
	counts, err := db.CountSamples(ctx, false)
	require.NoError(t, err)
	require.Equal(t, map[int]int{2: 1}, counts)
	_, err = db.LoadPrediction(ctx, 1, 2)
	require.Error(t, err)

	require.NoError(t, db.PutAnomaly(ctx, 0, "malformed_record", 0, "line 1"))
	require.NoError(t, db.PutAnomaly(ctx, 3, "orphan_user", 4, ""))
	require.NoError(t, db.ClearAnomalyKind(ctx, "malformed_record"))
	n, err := db.CountAnomalies(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"orphan_user": 1}, n)
}

func TestVectorKeepsLargeElapsedExact(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()
	v := []float64{1<<24 + 1, 31536000123, 4.0 / 3}
	require.NoError(t, db.PutSample(ctx, SampleRow{MessageID: 1, K: 3, Vector: v, Sufficient: true}, nil))
	got, err := db.LoadSamples(ctx, 3, true)
	require.NoError(t, err)
	require.Equal(t, v, got[0].Vector)
}

func TestInTxRollsBack(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := db.InTx(ctx, func(tx *DB) error {
		require.NoError(t, tx.PutPrediction(ctx, 1, 5, 0.9))
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, err = db.LoadPrediction(ctx, 1, 5)
	require.Error(t, err)

	require.NoError(t, db.InTx(ctx, func(tx *DB) error { return tx.PutPrediction(ctx, 1, 5, 0.25) }))
	score, err := db.LoadPrediction(ctx, 1, 5)
	require.NoError(t, err)
	require.Equal(t, 0.25, score)
}
