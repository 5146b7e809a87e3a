package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Read and summarize email",
	}
	cmd.AddCommand(newMailSummarizeCmd())
	return cmd
}

func newMailSummarizeCmd() *cobra.Command {
	var showEmails bool

	cmd := &cobra.Command{
		Use:   "summarize <request>",
		Short: "Summarize the emails matching a request",
		Long: "Translate a request such as \"5 unread emails from John\" into a Gmail\n" +
			"query, classify each match and print a summary.",
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
			token, err := sess.MailToken(ctx)
			if err != nil {
				return err
			}

			res, err := a.Pipeline.ReadEmail(ctx, sess.UserID, token, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to read email: %w", err)
			}

			if jsonFlag {
				return printJSON(toJSONSummary(res))
			}

			if showEmails && len(res.Emails) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "LABEL\tDATE\tFROM\tSUBJECT")
				for _, e := range res.Emails {
					date := "-"
					if !e.Date.IsZero() {
						date = e.Date.Local().Format("Jan 02 15:04")
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Classification.Label, date, truncate(e.From, 30), truncate(e.Subject, 50))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Println()
			}
			fmt.Println(res.Summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEmails, "emails", false, "list the classified emails before the summary")
	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
