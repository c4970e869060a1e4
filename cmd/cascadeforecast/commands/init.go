package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cascadeforecast/internal/cmdlog"
	"cascadeforecast/internal/config"
	"cascadeforecast/internal/theme"
)

func newInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdlog.Run("init", func() error {
				if err := config.Save(path, config.Default()); err != nil {
					return err
				}
				abs, _ := filepath.Abs(path)
				theme.PrintBanner()
				fmt.Fprintln(cmd.OutOrStdout(), "Config written to:", abs)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "./cascadeforecast.yaml", "path to write config")
	return cmd
}
