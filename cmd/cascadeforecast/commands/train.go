package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"cascadeforecast/internal/classifier"
	"cascadeforecast/internal/cmdlog"
	"cascadeforecast/internal/logging"
	"cascadeforecast/internal/store/sqlitevec"
)

func newTrainCmd(opts *rootOptions) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the external classifier on k's samples and score the held-out cascades",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdlog.Run("train", func() error {
				cfg, err := opts.load()
				if err != nil { return err }
				if cfg.Classifier.BinaryPath == "" {
					return errors.New("classifier.binaryPath is empty (or set CASCADE_CLASSIFIER_BIN)")
				}
				db, err := sqlitevec.Open(cfg.Storage.DBPath)
				if err != nil { return err }
				defer db.Close()
				clf := classifier.External{BinaryPath: cfg.Classifier.BinaryPath, ModelPath: cfg.Classifier.ModelPath}
				res, err := classifier.TrainFromDB(cmd.Context(), db, clf, k, cfg.Classifier.Seed, cfg.Classifier.TestFraction)
				if errors.Is(err, classifier.ErrSingleClass) {
					logging.Warn("train_skipped", map[string]any{"k": k, "reason": err.Error()})
					return nil
				}
				if err != nil { return err }
				logging.Info("train_done", map[string]any{"k": k, "train": res.Train, "test": res.Test, "predicted_positive": res.Positives, "correct": res.Correct, "model": cfg.Classifier.ModelPath})
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&k, "k", 5, "prefix length")
	return cmd
}
