package main

import (
	"os"

	"github.com/yantrahq/yantra/internal/cli"
	"github.com/yantrahq/yantra/internal/leaderboard"

	"github.com/spf13/cobra"
)

var refreshFlag bool

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb"},
	Short:   "Show team standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadState()
		if err != nil {
			return err
		}
		if err := st.requireSession(); err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		var board *leaderboard.Board
		err = withSpinner("Loading leaderboard...", func() error {
			var err error
			board, err = st.client.Leaderboard(ctx, refreshFlag)
			return err
		})
		if err != nil {
			return err
		}
		cli.RenderBoard(os.Stdout, board)
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().BoolVar(&refreshFlag, "refresh", false, "re-read team summaries before rendering")
	rootCmd.AddCommand(leaderboardCmd)
}
