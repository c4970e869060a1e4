package pipeline

import (
	"context"
	"fmt"

	"cascadeforecast/internal/cascade"
	"cascadeforecast/internal/logging"
	"cascadeforecast/internal/store/redisfeat"
	"cascadeforecast/internal/store/sqlitevec"
)

// FeaturePublisher pushes sufficient samples to an online feature store.
type FeaturePublisher interface {
	Publish(ctx context.Context, entity string, values map[string]float64) error
}

// Persist writes cascades, samples and anomalies in one transaction, then
// publishes sufficient samples when pub is non-nil. Re-running a batch
// replaces earlier rows for the same cascades; a cascade that now fails
// loses its earlier samples and predictions.
func Persist(ctx context.Context, db *sqlitevec.DB, pub FeaturePublisher, results []Result) error {
	err := db.InTx(ctx, func(tx *sqlitevec.DB) error {
		for _, r := range results {
			id := r.Record.MessageID
			if err := tx.ClearAnomalies(ctx, id); err != nil { return err }
			row := sqlitevec.CascadeRow{
				MessageID:     id,
				RootUserID:    r.Record.RootUserID,
				PublishTime:   r.Record.PublishTime,
				DeclaredCount: r.Record.DeclaredRetweetCount,
				Failed:        r.Err != nil,
			}
			if r.Cascade != nil {
				row.ObservedCount = r.Cascade.Len()
			}
			if err := tx.PutCascade(ctx, row); err != nil { return fmt.Errorf("cascade %d: %w", id, err) }
			if err := putAnomalies(ctx, tx, r.Anomalies); err != nil { return err }
			if r.Err != nil {
				if err := tx.DeleteSamples(ctx, id); err != nil { return fmt.Errorf("cascade %d: %w", id, err) }
				continue
			}
			for _, s := range r.Samples {
				sr := sqlitevec.SampleRow{
					MessageID:  id,
					K:          s.K,
					Vector:     s.Features.Values(),
					Label:      s.Label,
					FinalCount: s.FinalRetweetCount,
					Sufficient: s.Sufficient,
				}
				meta := map[string]any{"root_user_id": r.Record.RootUserID, "prefix_events": s.Features.K}
				if err := tx.PutSample(ctx, sr, meta); err != nil { return fmt.Errorf("sample %d/k=%d: %w", id, s.K, err) }
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	if pub == nil {
		return nil
	}
	published := 0
	for _, r := range results {
		for _, s := range r.Samples {
			if !s.Sufficient { continue }
			if err := pub.Publish(ctx, redisfeat.Entity(r.Record.MessageID, s.K), s.Features.Map()); err != nil {
				return err
			}
			published++
		}
	}
	logging.Info("features_published", map[string]any{"vectors": published})
	return nil
}

// ReplaceRecordAnomalies stores the unreadable-line anomalies of a dataset
// read, replacing every MalformedRecord row of an earlier build.
func ReplaceRecordAnomalies(ctx context.Context, db *sqlitevec.DB, anomalies []cascade.Anomaly) error {
	return db.InTx(ctx, func(tx *sqlitevec.DB) error {
		if err := tx.ClearAnomalyKind(ctx, string(cascade.MalformedRecord)); err != nil { return err }
		return putAnomalies(ctx, tx, anomalies)
	})
}

func putAnomalies(ctx context.Context, tx *sqlitevec.DB, anomalies []cascade.Anomaly) error {
	for _, a := range anomalies {
		if err := tx.PutAnomaly(ctx, a.MessageID, string(a.Kind), a.UserID, a.Detail); err != nil {
			return fmt.Errorf("anomaly %s: %w", a.Kind, err)
		}
	}
	return nil
}
