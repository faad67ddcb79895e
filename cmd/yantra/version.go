package main

import (
	"fmt"

	"github.com/yantrahq/yantra/internal/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI and server versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("yantra", version.Info())

		st, err := loadState()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		health, err := st.client.Health(ctx)
		if err != nil {
			logger.Warn("Could not reach server: %v", err)
			return nil
		}
		fmt.Printf("server %s (%s)\n", health.Version.Version, health.Status)
		if version.IsUpdateAvailable(version.Version, health.Version.Version) {
			fmt.Printf("A newer release (%s) is available.\n", health.Version.Version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
