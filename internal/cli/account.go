package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/provider/gmail"
	"github.com/jayan110105/neura/internal/store"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Link a Gmail account via OAuth",
		Long: "Opens the Google consent page through a local callback server.\n" +
			"The mail token is kept in the OS keyring.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.CheckGoogle(); err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr, "Starting Gmail OAuth flow...")
			token, err := gmail.LoopbackLogin(ctx, a.OAuth, os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			email, err := a.Mail.Profile(ctx, token)
			if err != nil {
				return fmt.Errorf("failed to get profile email: %w", err)
			}

			user := &domain.User{Email: email}
			if err := a.Store.UpsertUser(ctx, user); err != nil {
				return fmt.Errorf("failed to store user: %w", err)
			}
			if err := a.Secrets.SaveToken(ctx, user.ID, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			if err := a.Secrets.Set(store.LocalUserKey, user.ID); err != nil {
				return fmt.Errorf("failed to save local user: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "login", Email: email, UserID: user.ID})
			}
			fmt.Printf("Signed in as %s\n", email)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the linked Gmail account",
		RunE: func(cmd *cobra.Command, args []string) error {
			secrets := store.NewKeyringSecretStore()

			userID, err := secrets.Get(store.LocalUserKey)
			if errors.Is(err, store.ErrSecretNotFound) {
				return errors.New("not signed in")
			}
			if err != nil {
				return fmt.Errorf("failed to read local user: %w", err)
			}

			if err := secrets.DeleteToken(userID); err != nil && !errors.Is(err, store.ErrSecretNotFound) {
				// Non-fatal: token may already be gone.
				fmt.Fprintf(os.Stderr, "Warning: could not remove token from keyring: %v\n", err)
			}
			if err := secrets.Delete(store.LocalUserKey); err != nil {
				return fmt.Errorf("failed to remove local user: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "logout", UserID: userID})
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}
