package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jayan110105/neura/internal/config"
	"github.com/jayan110105/neura/internal/store"
	"github.com/spf13/cobra"
)

var knownSecrets = []string{
	config.SecretAnthropicKey,
	config.SecretGoogleClientSecret,
	config.SecretJWT,
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Store secrets in the OS keyring",
		Long: "Secrets missing from the config file and environment are read from the\n" +
			"OS keyring. Known names: " + strings.Join(knownSecrets, ", ") + ".",
	}
	cmd.AddCommand(newSecretSetCmd())
	cmd.AddCommand(newSecretDeleteCmd())
	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Set a secret, reading the value from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretName(args[0]); err != nil {
				return err
			}
			if !jsonFlag {
				fmt.Fprintf(os.Stderr, "Enter value for %s: ", args[0])
			}
			value, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := store.NewKeyringSecretStore().Set(args[0], value); err != nil {
				return fmt.Errorf("failed to store secret: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "secret-set", Name: args[0]})
			}
			fmt.Fprintln(os.Stderr)
			fmt.Printf("Secret stored: %s\n", args[0])
			return nil
		},
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretName(args[0]); err != nil {
				return err
			}
			err := store.NewKeyringSecretStore().Delete(args[0])
			if errors.Is(err, store.ErrSecretNotFound) {
				return fmt.Errorf("secret not set: %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to delete secret: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "secret-delete", Name: args[0]})
			}
			fmt.Printf("Secret deleted: %s\n", args[0])
			return nil
		},
	}
}

func checkSecretName(name string) error {
	for _, s := range knownSecrets {
		if s == name {
			return nil
		}
	}
	return fmt.Errorf("unknown secret %q (use one of: %s)", name, strings.Join(knownSecrets, ", "))
}

// readSecret reads one line from r without the trailing newline.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	value := strings.TrimRight(line, "\r\n")
	if value == "" {
		return "", errors.New("secret value must not be empty")
	}
	return value, nil
}
