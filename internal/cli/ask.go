package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ordermatters/internal/chat"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the research assistant a question",
		Long: `Ask a question about the study. The configured language model answers
from the research briefing.

Examples:
  ordermatters ask "Why does the faulty method's position matter?"
  ORDERMATTERS_LLM_PROVIDER=anthropic ordermatters ask "What does segmentation fix?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			assistant, err := a.newAssistant(ctx)
			if err != nil {
				return err
			}

			msg, err := assistant.Ask(ctx, chat.NewConversation(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.Text)
			return nil
		},
	}
}
