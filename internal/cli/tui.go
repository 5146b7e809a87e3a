package cli

import (
	"github.com/jayan110105/neura/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive chat",
		Long: "Full-screen chat with the assistant, with your notes alongside.\n" +
			"The conversation is shared with 'neura chat'.",
		Args: cobra.NoArgs,
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

			return tui.Run(ctx, tui.Deps{
				Agent:       a.Agent,
				Transcripts: a.Store,
				Notes:       a.Notes,
				Session:     sess,
			})
		},
	}
}
