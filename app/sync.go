package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
	"github.com/lostandfound-admin/lostandfound-admin/internal/daemon"
	"github.com/lostandfound-admin/lostandfound-admin/internal/logger"
)

func init() { //nolint: gochecknoinits
	syncCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory")

	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one Active Directory synchronization pass and print the summary",
	PreRun: func(_ *cobra.Command, _ []string) {
		if cfg, err = config.ReadConfig(configPath); err != nil {
			panic(err)
		}

		if err = logger.Init(cfg.Log); err != nil {
			panic(err)
		}
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := daemon.RunSyncOnce(&cfg)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Summary())

		return nil
	},
}
