package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/backup"
	"github.com/ksyq12/caddyman/internal/input"
	"github.com/ksyq12/caddyman/internal/output"
)

var restoreForce bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Save a backup of the Caddyfile",
	Long: `Copy the current Caddyfile to a timestamped backup next to it.

Every change made by caddyman also saves a backup first.

Examples:
  caddyman backup
  caddyman backup list
  caddyman backup restore Caddyfile.20261015-093005.bak`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups, newest first",
	Args:    cobra.NoArgs,
	RunE:    runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore the Caddyfile from a backup",
	Long: `Replace the Caddyfile with one of its backups.

The current Caddyfile is backed up first, and the restored content is
validated and reloaded like any other change.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

func init() {
	backupRestoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "Restore without confirmation")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	h, err := s.mgr.Backup(commandContext(cmd))
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(h)
	}
	output.Success("Backup saved to %s", h.Path)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	handles, err := s.mgr.Backups()
	if err != nil {
		return err
	}
	if handles == nil {
		handles = []backup.Handle{}
	}

	if jsonOutput {
		return output.JSON(handles)
	}
	if len(handles) == 0 {
		output.Info("No backups of %s", s.cfg.Caddyfile)
		return nil
	}

	rows := make([][]string, 0, len(handles))
	for _, h := range handles {
		rows = append(rows, []string{
			h.CreatedAt.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(h.Size, 10),
			h.Path,
		})
	}
	output.Table([]string{"CREATED", "BYTES", "FILE"}, rows)
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	file := args[0]

	s, err := newSession()
	if err != nil {
		return err
	}

	if !restoreForce && !dryRun && !jsonOutput {
		if !input.Confirm(deps.StdinReader, os.Stdout, "Replace "+s.cfg.Caddyfile+" with "+file+"?") {
			output.Info("Cancelled")
			return nil
		}
	}

	res, err := s.mgr.Restore(commandContext(cmd), file, mutateOptions())
	return s.reportResult(res, err, "Restored %s from %s", s.cfg.Caddyfile, file)
}
