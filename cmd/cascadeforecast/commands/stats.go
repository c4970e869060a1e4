package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"cascadeforecast/internal/cmdlog"
	"cascadeforecast/internal/logging"
	"cascadeforecast/internal/store/sqlitevec"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show anomaly and sample counts from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdlog.Run("stats", func() error {
				cfg, err := opts.load()
				if err != nil { return err }
				db, err := sqlitevec.Open(cfg.Storage.DBPath)
				if err != nil { return err }
				defer db.Close()
				ctx := cmd.Context()
				anomalies, err := db.CountAnomalies(ctx)
				if err != nil { return err }
				all, err := db.CountSamples(ctx, false)
				if err != nil { return err }
				usable, err := db.CountSamples(ctx, true)
				if err != nil { return err }
				perK := make(map[string]any, len(all))
				for k, n := range all {
					perK[strconv.Itoa(k)] = map[string]int{"samples": n, "sufficient": usable[k]}
				}
				logging.Info("stats", map[string]any{"anomalies": anomalies, "samples": perK})
				return nil
			})
		},
	}
}
