package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/output"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"test"},
	Short:   "Check the Caddyfile with caddy",
	Long: `Run caddy's validator against the Caddyfile on disk.

Examples:
  caddyman validate
  caddyman validate --caddyfile ./Caddyfile`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateResult is the JSON form of a validation
type validateResult struct {
	Valid      bool   `json:"valid"`
	Caddyfile  string `json:"caddyfile"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	diag, err := s.mgr.Validate(commandContext(cmd))
	if err != nil && !errors.Is(err, errors.ErrValidationFailed) {
		return err
	}

	if jsonOutput {
		if jerr := output.JSON(validateResult{Valid: err == nil, Caddyfile: s.cfg.Caddyfile, Diagnostic: diag}); jerr != nil {
			return jerr
		}
		return err
	}

	if err != nil {
		output.Error("%s is not valid", s.cfg.Caddyfile)
		output.Detail(diag)
		return err
	}
	output.Success("%s is valid", s.cfg.Caddyfile)
	return nil
}
