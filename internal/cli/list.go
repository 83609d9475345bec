package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/caddyfile"
	"github.com/ksyq12/caddyman/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List site blocks",
	Long: `List the site blocks of the Caddyfile in file order.

Examples:
  caddyman list
  caddyman ls
  caddyman list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	entries, err := s.mgr.List()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []caddyfile.Entry{}
	}

	if jsonOutput {
		return output.JSON(entries)
	}

	if len(entries) == 0 {
		output.Info("No site blocks in %s", s.cfg.Caddyfile)
		return nil
	}

	headers := []string{"NAME", "KIND", "TARGET"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		target := e.Target
		if target == "" {
			target = "-"
		}
		rows = append(rows, []string{e.Name, string(e.Kind), target})
	}
	output.Table(headers, rows)
	return nil
}
