package cli

import (
	"github.com/spf13/cobra"
)

var (
	addType     string
	addTo       string
	addRedirect string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a site block",
	Long: `Add a new site block to the end of the Caddyfile.

The change is validated with caddy before it is kept, and caddy is
reloaded afterwards. A backup of the previous Caddyfile is saved next to it.

Examples:
  caddyman add app.example.com
  caddyman add app.example.com --to 127.0.0.1:3000
  caddyman add old.example.com --redirect https://new.example.com
  caddyman add app.example.com --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "Block type (reverse_proxy, redirect)")
	addCmd.Flags().StringVar(&addTo, "to", "", "Upstream address for reverse_proxy (default from config)")
	addCmd.Flags().StringVar(&addRedirect, "redirect", "", "Redirect destination URL")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := validateName(name); err != nil {
		return err
	}
	kind, target, err := resolveKind(addType, addTo, addRedirect)
	if err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}
	if err := s.ensureEmail(); err != nil {
		return err
	}

	res, err := s.mgr.Add(commandContext(cmd), name, kind, target, mutateOptions())
	return s.reportResult(res, err, "Added %s", name)
}
