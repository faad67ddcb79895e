package main

import (
	"fmt"

	"github.com/yantrahq/yantra/internal/api/dto/v1/dashboard"

	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Upload your team's submission",
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

		var res *dashboard.SubmissionResponse
		err = withSpinner("Uploading "+args[0]+"...", func() error {
			var err error
			res, err = st.client.Submit(ctx, args[0])
			return err
		})
		if err != nil {
			return err
		}
		fmt.Printf("Submitted %s at %s.\n", res.Submission.Path, res.Submission.Time.Local().Format("2006-01-02 15:04:05"))
		if res.Submission.URL != "" {
			fmt.Println("URL:", res.Submission.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
