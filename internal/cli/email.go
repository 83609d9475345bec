package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/envstore"
	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/output"
)

var emailCmd = &cobra.Command{
	Use:   "email [address]",
	Short: "Show or set the certificate email",
	Long: `Show or set the email address caddy registers certificates with.

The address is kept in caddyman.env next to the Caddyfile. Reference it
from the global options block:

  {
  	email {$email}
  }

Examples:
  caddyman email
  caddyman email ops@example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmail,
}

func init() {
	rootCmd.AddCommand(emailCmd)
}

func runEmail(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	store := envstore.New(s.cfg.EnvFile)

	if len(args) == 0 {
		email, ok, err := store.Get(envstore.KeyEmail)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(map[string]interface{}{"email": email, "set": ok, "file": store.Path()})
		}
		if !ok {
			return errors.Precondition("no email set; run 'caddyman email <address>'")
		}
		output.Print("%s", email)
		return nil
	}

	email := args[0]
	if err := validateEmail(email); err != nil {
		return err
	}
	if dryRun {
		output.Info("Dry run: would set email to %s in %s", email, store.Path())
		return nil
	}
	if err := store.Set(envstore.KeyEmail, email); err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{"success": true, "email": email, "file": store.Path()})
	}
	output.Success("Email set to %s", email)
	return nil
}
