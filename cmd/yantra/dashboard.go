package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yantrahq/yantra/internal/cli"
	"github.com/yantrahq/yantra/internal/roundgate"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the round-gated dashboard",
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

		dash, err := st.client.Dashboard(ctx)
		if err != nil {
			return err
		}
		if dash.Team != nil {
			cli.RenderTeam(os.Stdout, dash.Team)
			fmt.Println()
		}
		cli.RenderEntries(os.Stdout, dash.Entries)
		if !dash.Observed {
			fmt.Println("\nRound status is not available yet; rounds stay locked.")
		}
		return nil
	},
}

var dashboardOpenCmd = &cobra.Command{
	Use:   "open <section>",
	Short: "Activate a dashboard section (intro, round1, round2, leaderboard)",
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

		res, err := st.client.OpenSection(ctx, strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		if res.Rejected {
			fmt.Printf("%s is locked; staying on %s.\n", args[0], res.Active)
		}
		cli.RenderEntries(os.Stdout, res.Entries)
		if res.Board != nil {
			fmt.Println()
			cli.RenderBoard(os.Stdout, res.Board)
		}
		return nil
	},
}

var dashboardCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the dashboard view of this session",
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

		if err := st.client.CloseDashboard(ctx); err != nil {
			return err
		}
		fmt.Println("Dashboard closed.")
		return nil
	},
}

var dashboardWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow round unlocks and navigation changes live",
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

		fmt.Fprintln(os.Stderr, "Watching dashboard, press Ctrl+C to stop.")
		return st.client.WatchDashboard(ctx, func(ev cli.Event) error {
			switch ev.Name {
			case "ping":
				logger.Debug("keepalive %s", ev.Data)
			case "snapshot":
				fmt.Println("Connected.")
			case "closed":
				fmt.Println("Dashboard closed by the server.")
			default:
				var change roundgate.Event
				if err := json.Unmarshal(ev.Data, &change); err != nil {
					logger.Warn("Unreadable %s event: %v", ev.Name, err)
					return nil
				}
				fmt.Printf("%s  %-10s %s (active: %s)\n", change.Time.Local().Format(time.Kitchen), ev.Name, change.Section, change.Active)
			}
			return nil
		})
	},
}

func init() {
	dashboardCmd.AddCommand(dashboardOpenCmd, dashboardCloseCmd, dashboardWatchCmd)
	rootCmd.AddCommand(dashboardCmd)
}
