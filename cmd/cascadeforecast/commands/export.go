package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"cascadeforecast/internal/classifier"
	"cascadeforecast/internal/cmdlog"
	"cascadeforecast/internal/logging"
	"cascadeforecast/internal/store/sqlitevec"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var k int
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write trainable samples for k as JSONL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdlog.Run("export", func() error {
				cfg, err := opts.load()
				if err != nil { return err }
				db, err := sqlitevec.Open(cfg.Storage.DBPath)
				if err != nil { return err }
				defer db.Close()
				samples, err := classifier.LoadSamples(cmd.Context(), db, k)
				if err != nil { return err }

				var w io.Writer = cmd.OutOrStdout()
				if out != "" && out != "-" {
					f, err := os.Create(out)
					if err != nil { return err }
					defer f.Close()
					w = f
				}
				if err := classifier.WriteJSONL(w, samples); err != nil { return err }
				logging.Info("export_done", map[string]any{"k": k, "samples": len(samples), "out": out})
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&k, "k", 5, "prefix length")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}
