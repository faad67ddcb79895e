package main

import (
	"fmt"
	"os"

	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/cli"

	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Create, join or show a team",
}

var teamCreateCmd = &cobra.Command{
	Use:   "create <name> <capacity>",
	Short: "Create a team and become its leader",
	Args:  cobra.ExactArgs(2),
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

		created, err := st.client.CreateTeam(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Created team %s. Share the join code: %s\n", created.TeamID, created.Code)
		return nil
	},
}

var teamJoinCmd = &cobra.Command{
	Use:   "join <code>",
	Short: "Join a team with its code",
	Args:  cobra.ExactArgs(1),
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

		joined, err := st.client.JoinTeam(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Joined team %s.\n", joined.TeamName)
		return nil
	},
}

var teamShowCmd = &cobra.Command{
	Use:   "show [team-id]",
	Short: "Show your team, or any team by id",
	Args:  cobra.MaximumNArgs(1),
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

		var details *team.DetailsResponse
		if len(args) == 1 {
			details, err = st.client.Team(ctx, args[0])
		} else {
			details, err = st.client.CurrentTeam(ctx)
		}
		if err != nil {
			return err
		}
		cli.RenderTeam(os.Stdout, details)
		return nil
	},
}

func init() {
	teamCmd.AddCommand(teamCreateCmd, teamJoinCmd, teamShowCmd)
	rootCmd.AddCommand(teamCmd)
}
