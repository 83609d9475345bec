package cli

import (
	"os"

	"github.com/ksyq12/caddyman/internal/logger"
	"github.com/spf13/cobra"
)

var (
	jsonOutput    bool
	verbose       bool
	logLevel      string
	caddyfilePath string
	dryRun        bool
	noReload      bool
	version       = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "caddyman",
	Short: "Caddyfile site block manager",
	Long: `caddyman adds, edits and removes site blocks in a Caddyfile.

Every change is backed up first, checked with "caddy validate" and only
then applied with a reload. A change that fails validation is rolled back,
so the running server never sees a broken Caddyfile.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
		if logLevel != "" {
			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				logger.Warn("%v, keeping default", err)
				return
			}
			logger.SetLevel(level)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides --verbose")
	rootCmd.PersistentFlags().StringVar(&caddyfilePath, "caddyfile", "", "Caddyfile to manage (default from config or platform)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show the change as a diff without writing it")
	rootCmd.PersistentFlags().BoolVar(&noReload, "no-reload", false, "Validate but do not reload caddy")
}
