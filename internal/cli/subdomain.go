package cli

import (
	"github.com/spf13/cobra"
)

var (
	subTo       string
	subRedirect string
)

var subdomainCmd = &cobra.Command{
	Use:   "subdomain <domain> <sub>",
	Short: "Add a block for a subdomain",
	Long: `Add a site block named <sub>.<domain>.

The parent domain does not need a block of its own. A <sub> that already
ends in <domain> is used as is.

Examples:
  caddyman subdomain example.com api --to 127.0.0.1:9000
  caddyman subdomain example.com www --redirect https://example.com`,
	Args: cobra.ExactArgs(2),
	RunE: runSubdomain,
}

func init() {
	subdomainCmd.Flags().StringVar(&subTo, "to", "", "Upstream address for reverse_proxy (default from config)")
	subdomainCmd.Flags().StringVar(&subRedirect, "redirect", "", "Redirect destination URL")

	rootCmd.AddCommand(subdomainCmd)
}

func runSubdomain(cmd *cobra.Command, args []string) error {
	domain, sub := args[0], args[1]
	if err := validateName(domain); err != nil {
		return err
	}
	kind, target, err := resolveKind("", subTo, subRedirect)
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

	res, err := s.mgr.AddSubdomain(commandContext(cmd), domain, sub, kind, target, mutateOptions())
	name := ""
	if res != nil {
		name = res.Name
	}
	return s.reportResult(res, err, "Added %s", name)
}
