package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/input"
	"github.com/ksyq12/caddyman/internal/output"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:     "remove [name]",
	Aliases: []string{"rm"},
	Short:   "Remove a site block",
	Long: `Remove a site block from the Caddyfile.

Asks for the name when none is given, and for confirmation unless --force
is set.

Examples:
  caddyman remove app.example.com
  caddyman rm app.example.com --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Remove without confirmation")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		if jsonOutput {
			return errors.InvalidInput("a block name is required")
		}
		name, err = input.Prompt(deps.StdinReader, os.Stdout, "Block to remove: ")
		if err != nil || name == "" {
			return errors.InvalidInput("a block name is required")
		}
	}

	if err := validateName(name); err != nil {
		return err
	}

	block, err := s.mgr.Show(name)
	if err != nil {
		return err
	}

	if !removeForce && !dryRun && !jsonOutput {
		output.Print("%s", strings.TrimRight(block.Raw, "\n"))
		if !input.Confirm(deps.StdinReader, os.Stdout, "Remove "+name+"?") {
			output.Info("Cancelled")
			return nil
		}
	}

	res, err := s.mgr.Remove(commandContext(cmd), name, mutateOptions())
	return s.reportResult(res, err, "Removed %s", name)
}
