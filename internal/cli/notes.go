package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/notes"
	"github.com/spf13/cobra"
)

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage notes",
	}
	cmd.AddCommand(newNotesListCmd())
	cmd.AddCommand(newNotesAddCmd())
	cmd.AddCommand(newNotesCreateCmd())
	cmd.AddCommand(newNotesRemoveCmd())
	return cmd
}

func newNotesListCmd() *cobra.Command {
	var (
		queryFlag    string
		categoryFlag []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := parseCategories(categoryFlag)
			if err != nil {
				return err
			}

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
			list, err := a.Notes.List(ctx, userID, notes.Filter{Query: queryFlag, Categories: cats})
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}

			if jsonFlag {
				return printJSON(toJSONNotes(list))
			}
			if len(list) == 0 {
				fmt.Println("No notes found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tTAGS\tCREATED")
			for _, n := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					n.ID,
					truncate(n.Title, 40),
					n.Category,
					strings.Join(n.Tags, ", "),
					n.CreatedAt.Local().Format(time.DateOnly),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "match title or tags")
	cmd.Flags().StringSliceVarP(&categoryFlag, "category", "c", nil, "only these categories (work, personal, ideas, tasks)")
	return cmd
}

func newNotesAddCmd() *cobra.Command {
	var (
		contentFlag  string
		categoryFlag string
		tagsFlag     []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a note with a chosen category and tags",
		Args:  cobra.ExactArgs(1),
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
			n, err := a.Notes.Add(ctx, &domain.Note{
				Title:    args[0],
				Content:  contentFlag,
				OwnerID:  userID,
				Tags:     tagsFlag,
				Category: domain.Category(categoryFlag),
			})
			if err != nil {
				return fmt.Errorf("failed to add note: %w", err)
			}
			return printNote(n)
		},
	}

	cmd.Flags().StringVar(&contentFlag, "content", "", "note body")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "work, personal, ideas or tasks")
	cmd.Flags().StringSliceVar(&tagsFlag, "tags", nil, "1 to 5 comma-separated tags")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("tags")
	return cmd
}

func newNotesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <title> [content]",
		Short: "Create a note, letting the assistant pick category and tags",
		Args:  cobra.RangeArgs(1, 2),
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
			userID, err := a.LocalUserID()
			if err != nil {
				return err
			}

			var content string
			if len(args) == 2 {
				content = args[1]
			}
			n, err := a.Notes.Create(ctx, userID, args[0], content)
			if err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}
			return printNote(n)
		},
	}
}

func newNotesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
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
			if err := a.Notes.Delete(ctx, userID, args[0]); err != nil {
				return fmt.Errorf("failed to delete note %s: %w", args[0], err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "note-delete", NoteID: args[0]})
			}
			fmt.Printf("Note deleted: %s\n", args[0])
			return nil
		},
	}
}

func printNote(n *domain.Note) error {
	if jsonFlag {
		return printJSON(toJSONNote(*n))
	}
	fmt.Printf("Note created: %s\n", n.ID)
	fmt.Printf("Category: %s\n", n.Category)
	fmt.Printf("Tags: %s\n", strings.Join(n.Tags, ", "))
	return nil
}

func parseCategories(names []string) ([]domain.Category, error) {
	var out []domain.Category
	for _, name := range names {
		c, err := domain.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
