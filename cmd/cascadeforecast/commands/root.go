package commands

import (
	"github.com/spf13/cobra"

	"cascadeforecast/internal/config"
	"cascadeforecast/internal/metrics"
	"cascadeforecast/internal/theme"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd wires every subcommand onto a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "cascadeforecast",
		Short: "Predict whether retweet cascades double from their first k retweets",
		Long: `cascadeforecast builds retweet cascade trees, cuts them to their first k
retweets and extracts the temporal and structural features an external
classifier trains on.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			theme.PrintBanner()
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "./cascadeforecast.yaml", "config path")

	root.AddCommand(
		newInitCmd(),
		newBuildCmd(opts),
		newExportCmd(opts),
		newTrainCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	metrics.StartServer(cfg.Metrics.Addr)
	return cfg, nil
}
