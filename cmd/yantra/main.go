package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yantrahq/yantra/internal/cli"
	"github.com/yantrahq/yantra/internal/logging"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	logger *logging.Logger

	serverFlag  string
	timeoutFlag time.Duration
	configDir   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "yantra",
	Short: "Yantra CLI - hackathon teams, rounds and leaderboard",
	Long: `Yantra CLI lets participants register, form teams, follow the
round-gated dashboard and submit their work from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LevelWarn
		if verbose {
			level = logging.LevelDebug
		}
		logger = logging.NewWriterLogger(os.Stderr, level)

		if configDir == "" {
			dir, err := cli.GetConfigDir()
			if err != nil {
				return err
			}
			configDir = dir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", os.Getenv("YANTRA_SERVER"), "API base URL (default from session file or "+cli.DefaultServer+")")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding session.json (default ~/.yantra)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// state is the loaded session file plus a client bound to it
type state struct {
	path    string
	session *cli.Session
	client  *cli.Client
}

func loadState() (*state, error) {
	path := cli.SessionPath(configDir)
	sess, err := cli.LoadSession(path)
	if err != nil {
		return nil, err
	}

	server := sess.Server
	if serverFlag != "" {
		server = serverFlag
	}
	if server == "" {
		server = cli.DefaultServer
	}
	if server != sess.Server {
		// A token is only valid on the server that issued it
		sess.Token = ""
		sess.Server = server
	}

	logger.Debug("Using server %s (session file %s)", server, path)
	return &state{path: path, session: sess, client: cli.NewClient(server, sess.Token, timeoutFlag)}, nil
}

func (s *state) requireSession() error {
	if s.session.Token == "" {
		return errors.New("not signed in; run 'yantra login' first")
	}
	return nil
}

// save persists the client's current token
func (s *state) save(email string) error {
	s.session.Token = s.client.Token()
	if email != "" || s.session.Token == "" {
		s.session.Email = email
	}
	return cli.SaveSession(s.path, s.session)
}

// withSpinner runs fn while showing a spinner on stderr
func withSpinner(suffix string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	err := fn()
	s.Stop()
	return err
}

// prompt reads a line from stdin when value is empty
func prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
