package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"leadswarm/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage API keys and the email password",
	Long: `Store credentials in the OS keychain. Each secret also has an
environment variable fallback for headless machines.

Known secrets:
  email_password  (env EMAIL_PASS)
  serpapi_key     (env SERP_API_KEY)
  gemini_key      (env GEMINI_API_KEY)
  hunter_key      (env HUNTER_API_KEY)`,
}

var secretsSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a secret, reading the value from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(os.Stderr, "value for %s: ", args[0])
		reader := bufio.NewReader(os.Stdin)
		value, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		if err := secrets.Set(args[0], strings.TrimSpace(value)); err != nil {
			return err
		}
		fmt.Printf("stored %s\n", args[0])
		return nil
	},
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a secret from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which secrets are set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range secrets.KnownNames() {
			v, err := secrets.Get(name)
			state := "unset"
			if err == nil && v != "" {
				state = "set"
			}
			fmt.Printf("%-16s %s\n", name, state)
		}
		return nil
	},
}

func init() {
	secretsCmd.AddCommand(secretsSetCmd)
	secretsCmd.AddCommand(secretsDeleteCmd)
	secretsCmd.AddCommand(secretsListCmd)
}
