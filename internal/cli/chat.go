package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant about your email and notes",
		Long: "Sends one message to the assistant. The conversation is kept between\n" +
			"runs; use 'neura chat reset' to start over.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.CheckModel(); err != nil {
				return err
			}
			sess, err := a.LocalSession()
			if err != nil {
				return err
			}

			t, err := a.Store.GetTranscript(ctx, sess.UserID)
			if err != nil {
				return fmt.Errorf("failed to load conversation: %w", err)
			}
			msgs := append(t.Messages, domain.NewMessage(domain.RoleUser, strings.Join(args, " ")))

			res, err := a.Agent.Run(ctx, sess, msgs, func(ev agent.Event) {
				if quiet || jsonFlag {
					return
				}
				switch ev.Type {
				case agent.EventToolCall:
					fmt.Fprintf(os.Stderr, "-> %s\n", ev.ToolCall.Name)
				case agent.EventToolResult:
					if ev.ToolResult.IsError {
						fmt.Fprintf(os.Stderr, "   %s failed: %s\n", ev.ToolResult.Name, ev.ToolResult.Content)
					}
				}
			})
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(toJSONTurn(res))
			}
			fmt.Println(res.Text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not report tool calls on stderr")
	cmd.AddCommand(newChatShowCmd())
	cmd.AddCommand(newChatResetCmd())
	return cmd
}

func newChatShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			userID, err := a.LocalUserID()
			if err != nil {
				return err
			}
			t, err := a.Store.GetTranscript(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load conversation: %w", err)
			}

			if jsonFlag {
				return printJSON(toJSONMessages(t.Messages))
			}
			if len(t.Messages) == 0 {
				fmt.Println("No conversation yet.")
				return nil
			}
			for _, m := range t.Messages {
				switch m.Role {
				case domain.RoleTool:
					for _, r := range m.ToolResults {
						fmt.Printf("[tool %s] %s\n\n", r.Name, truncate(r.Content, 200))
					}
				default:
					for _, c := range m.ToolCalls {
						fmt.Printf("[%s calls %s]\n", m.Role, c.Name)
					}
					if strings.TrimSpace(m.Content) != "" {
						fmt.Printf("%s: %s\n\n", m.Role, m.Content)
					}
				}
			}
			return nil
		},
	}
}

func newChatResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			userID, err := a.LocalUserID()
			if err != nil {
				return err
			}
			if err := a.Store.DeleteTranscript(ctx, userID); err != nil {
				return fmt.Errorf("failed to reset conversation: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "chat-reset", UserID: userID})
			}
			fmt.Println("Conversation cleared.")
			return nil
		},
	}
}
