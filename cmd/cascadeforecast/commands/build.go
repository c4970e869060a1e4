package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cascadeforecast/internal/cascade"
	"cascadeforecast/internal/cmdlog"
	"cascadeforecast/internal/dataset"
	"cascadeforecast/internal/label"
	"cascadeforecast/internal/logging"
	"cascadeforecast/internal/metrics"
	"cascadeforecast/internal/pipeline"
	"cascadeforecast/internal/store/redisfeat"
	"cascadeforecast/internal/store/sqlitevec"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var input string
	var ks []int
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build cascades and store feature samples for every k",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdlog.Run("build", func() error {
				cfg, err := opts.load()
				if err != nil { return err }
				if input == "" { input = cfg.Dataset.InputPath }
				if len(ks) > 0 {
					cfg.Prefix.Ks = ks
					if err := cfg.Validate(); err != nil { return err }
				}
				src, err := label.ParseSizeSource(cfg.Label.SizeSource)
				if err != nil { return err }

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()

				f, err := os.Open(input)
				if err != nil { return err }
				records, bad, err := dataset.ReadAll(f)
				_ = f.Close()
				if err != nil { return fmt.Errorf("read %s: %w", input, err) }
				for _, a := range bad {
					logging.Warn("malformed_record", map[string]any{"detail": a.Detail})
				}
				metrics.IncAnomaly(string(cascade.MalformedRecord), len(bad))

				results, rep, err := pipeline.Run(ctx, records, pipeline.Options{
					Ks:               cfg.Prefix.Ks,
					SizeSource:       src,
					Workers:          cfg.Pipeline.Workers,
					ProgressInterval: cfg.Pipeline.ProgressInterval,
				})
				if err != nil { return err }
				for _, r := range results {
					for _, a := range r.Anomalies {
						logging.Debug("anomaly", map[string]any{"kind": string(a.Kind), "message_id": a.MessageID, "user_id": a.UserID, "detail": a.Detail})
					}
				}

				db, err := sqlitevec.Open(cfg.Storage.DBPath)
				if err != nil { return err }
				defer db.Close()
				var pub pipeline.FeaturePublisher
				if cfg.Redis.Addr != "" {
					p, err := redisfeat.Connect(ctx, cfg.Redis.Addr, cfg.Redis.TTL)
					if err != nil { return err }
					defer p.Close()
					pub = p
				}
				if err := pipeline.Persist(ctx, db, pub, results); err != nil { return err }
				if err := pipeline.ReplaceRecordAnomalies(ctx, db, bad); err != nil { return err }

				byKind := make(map[string]any, len(rep.Anomalies))
				for k, n := range rep.Anomalies {
					byKind[string(k)] = n
				}
				byKind[string(cascade.MalformedRecord)] = len(bad)
				logging.Info("build_report", map[string]any{
					"records": len(records), "failed": rep.Failed, "samples": rep.Samples,
					"insufficient": rep.Insufficient, "anomalies": byKind, "db": cfg.Storage.DBPath,
				})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "dataset path (defaults to dataset.inputPath)")
	cmd.Flags().IntSliceVar(&ks, "k", nil, "prefix lengths, overriding prefix.ks")
	return cmd
}
