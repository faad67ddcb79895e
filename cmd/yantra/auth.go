package main

import (
	"fmt"
	"os"

	"github.com/yantrahq/yantra/internal/api/dto/v1/auth"
	"github.com/yantrahq/yantra/internal/cli"

	"github.com/spf13/cobra"
)

var (
	emailFlag    string
	passwordFlag string
	nameFlag     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadState()
		if err != nil {
			return err
		}
		email, err := prompt("Email", emailFlag)
		if err != nil {
			return err
		}
		name, err := prompt("Display name", nameFlag)
		if err != nil {
			return err
		}
		password, err := prompt("Password", passwordOrEnv())
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		sess, err := st.client.Register(ctx, email, password, name)
		if err != nil {
			return err
		}
		if err := st.save(email); err != nil {
			return err
		}
		printWelcome(sess)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in; an existing session switches to the new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadState()
		if err != nil {
			return err
		}
		email, err := prompt("Email", emailFlag)
		if err != nil {
			return err
		}
		password, err := prompt("Password", passwordOrEnv())
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		sess, err := st.client.Login(ctx, email, password)
		if err != nil {
			return err
		}
		if err := st.save(email); err != nil {
			return err
		}
		printWelcome(sess)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadState()
		if err != nil {
			return err
		}
		if st.session.Token == "" {
			fmt.Println("Not signed in.")
			return nil
		}

		ctx, cancel := signalContext()
		defer cancel()

		// The local session is cleared even when the server call fails
		if err := st.client.Logout(ctx); err != nil {
			logger.Warn("Server sign-out failed: %v", err)
		}
		if err := st.save(""); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and team",
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

		sess, err := st.client.Session(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", sess.Principal.DisplayName, sess.Principal.Email)
		if sess.Team != nil {
			cli.RenderTeam(os.Stdout, sess.Team)
		} else {
			fmt.Println("No team yet. Run 'yantra team create' or 'yantra team join'.")
		}
		return nil
	},
}

func passwordOrEnv() string {
	if passwordFlag != "" {
		return passwordFlag
	}
	return os.Getenv("YANTRA_PASSWORD")
}

func printWelcome(sess *auth.SessionResponse) {
	fmt.Printf("Signed in as %s.\n", sess.Principal.DisplayName)
	if sess.Next == "dashboard" && sess.Team != nil {
		fmt.Printf("Team %s is ready. Run 'yantra dashboard' to continue.\n", sess.Team.Name)
		return
	}
	fmt.Println("Next: create a team with 'yantra team create' or join one with 'yantra team join <code>'.")
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&emailFlag, "email", "", "account email")
		c.Flags().StringVar(&passwordFlag, "password", "", "account password (or YANTRA_PASSWORD)")
	}
	registerCmd.Flags().StringVar(&nameFlag, "name", "", "display name")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}
