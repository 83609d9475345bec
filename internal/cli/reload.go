package cli

import (
	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/output"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload caddy",
	Long: `Ask the running caddy to load the Caddyfile.

Uses systemctl when a service unit is configured, otherwise 'caddy reload'.`,
	Args: cobra.NoArgs,
	RunE: runReload,
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	if err := s.mgr.Reload(commandContext(cmd)); err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{"success": true, "reloaded": s.svc.Name()})
	}
	output.Success("%s reloaded", s.svc.Name())
	return nil
}
