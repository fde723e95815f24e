package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/ordermatters/internal/chat"
	"github.com/raphaelgruber/ordermatters/internal/client"
	"github.com/raphaelgruber/ordermatters/internal/service"
	"github.com/raphaelgruber/ordermatters/internal/tui"
)

var errNoTerminal = errors.New("play needs an interactive terminal")

func newPlayCmd(a *app) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open the interactive terminal UI",
		Long: `Open the interactive terminal UI: reorder methods and watch the score,
compare ordering strategies, resize segments and chat with the assistant.

Sessions run in-process unless --server points at an ordermatters-server.

Examples:
  ordermatters play
  ordermatters play --server http://localhost:8484`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
				return errNoTerminal
			}

			if serverURL != "" {
				return a.playRemote(serverURL)
			}
			return a.playLocal()
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "run the session on a remote server")
	return cmd
}

func (a *app) playLocal() error {
	var assistant *chat.Assistant
	if ast, err := a.newAssistant(context.Background()); err != nil {
		a.logger.Warn("assistant unavailable", "error", err)
	} else {
		assistant = ast
	}

	sessions := service.NewSessionManager(a.engine, assistant, a.cfg.RandomSeed, a.logger)
	return tui.Run(tui.NewLocal(sessions), a.data)
}

func (a *app) playRemote(serverURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(serverURL)
	data, err := c.Results(ctx)
	if err != nil {
		return fmt.Errorf("fetch results: %w", err)
	}
	data.Briefing = a.data.Briefing

	live, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("connected to server", "url", c.BaseURL(), "session_id", live.SessionID())
	return tui.Run(live, data)
}
