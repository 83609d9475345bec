package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a site block",
	Long: `Print one site block exactly as it appears in the Caddyfile.

Examples:
  caddyman show app.example.com
  caddyman show app.example.com --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := validateName(args[0]); err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}

	block, err := s.mgr.Show(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(block)
	}
	output.Print("%s", strings.TrimRight(block.Raw, "\n"))
	return nil
}
