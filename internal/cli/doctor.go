package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/caddyfile"
	"github.com/ksyq12/caddyman/internal/config"
	"github.com/ksyq12/caddyman/internal/envstore"
	"github.com/ksyq12/caddyman/internal/output"
	"github.com/ksyq12/caddyman/internal/platform"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks on the system and the Caddyfile.

Checks:
  - Caddy installation and version
  - Config and Caddyfile locations
  - Caddyfile structure and caddy validation
  - Certificate email setting
  - Site blocks

Examples:
  caddyman doctor
  caddyman doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// Check statuses
const (
	statusSuccess = "success"
	statusWarning = "warning"
	statusError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// BlockStatus represents the status of a single site block
type BlockStatus struct {
	Name   string        `json:"name"`
	Kind   string        `json:"kind"`
	Checks []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Blocks             []BlockStatus `json:"blocks"`
}

var caddyVersionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

func runDoctor(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(s)

	var doc *caddyfile.Document
	report.Configuration, doc = checkConfiguration(s)
	if doc != nil && s.svc.Installed() {
		if _, err := s.mgr.Validate(ctx); err == nil {
			report.Configuration = append(report.Configuration, CheckResult{
				Status:  statusSuccess,
				Message: "caddy validate passed",
			})
		} else {
			report.Configuration = append(report.Configuration, CheckResult{
				Status:  statusError,
				Message: "caddy validate failed: " + firstLine(err.Error()),
			})
		}
	}
	report.Blocks = checkBlocks(doc)

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements(s *session) []CheckResult {
	results := []CheckResult{{
		Status:  statusSuccess,
		Message: fmt.Sprintf("Platform %s", platform.Platform()),
	}}

	if !s.svc.Installed() {
		return append(results, CheckResult{
			Status:  statusError,
			Message: fmt.Sprintf("Caddy not installed (%s not on PATH)", s.cfg.Caddy.Binary),
		})
	}

	version := "unknown"
	if out, err := s.svc.Version(commandContext(nil)); err == nil {
		if matches := caddyVersionPattern.FindStringSubmatch(out); len(matches) >= 2 {
			version = matches[1]
		}
	}
	results = append(results, CheckResult{
		Status:  statusSuccess,
		Message: fmt.Sprintf("Caddy installed (%s)", version),
	})

	if s.cfg.Caddy.Service != "" {
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("Reload via systemctl unit %s", s.cfg.Caddy.Service),
		})
	} else {
		results = append(results, CheckResult{
			Status:  statusWarning,
			Message: "No service unit configured, reload uses 'caddy reload'",
		})
	}
	return results
}

// checkConfiguration returns the parsed Caddyfile when it could be read
func checkConfiguration(s *session) ([]CheckResult, *caddyfile.Document) {
	results := []CheckResult{}

	if configPath, err := config.ConfigPath(); err == nil {
		displayPath := strings.Replace(configPath, os.Getenv("HOME"), "~", 1)
		if _, err := os.Stat(configPath); err == nil {
			results = append(results, CheckResult{
				Status:  statusSuccess,
				Message: fmt.Sprintf("Config file exists (%s)", displayPath),
			})
		} else {
			results = append(results, CheckResult{
				Status:  statusWarning,
				Message: fmt.Sprintf("No config file (%s), using defaults", displayPath),
			})
		}
	}

	store := envstore.New(s.cfg.EnvFile)
	if email, ok, err := store.Get(envstore.KeyEmail); err != nil {
		results = append(results, CheckResult{Status: statusError, Message: "Could not read " + store.Path()})
	} else if !ok {
		results = append(results, CheckResult{
			Status:  statusWarning,
			Message: "No certificate email set (run 'caddyman email <address>')",
		})
	} else if validateEmail(email) != nil {
		results = append(results, CheckResult{Status: statusError, Message: fmt.Sprintf("Invalid email %q in %s", email, store.Path())})
	} else {
		results = append(results, CheckResult{Status: statusSuccess, Message: "Certificate email " + email})
	}

	data, err := os.ReadFile(s.cfg.Caddyfile)
	if err != nil {
		return append(results, CheckResult{
			Status:  statusError,
			Message: fmt.Sprintf("Caddyfile not readable (%s)", s.cfg.Caddyfile),
		}), nil
	}
	doc, err := caddyfile.Parse(string(data))
	if err != nil {
		return append(results, CheckResult{
			Status:  statusError,
			Message: fmt.Sprintf("Caddyfile structure error: %v", err),
		}), nil
	}
	return append(results, CheckResult{
		Status:  statusSuccess,
		Message: fmt.Sprintf("Caddyfile %s (%d site blocks)", s.cfg.Caddyfile, len(doc.List())),
	}), doc
}

func checkBlocks(doc *caddyfile.Document) []BlockStatus {
	statuses := []BlockStatus{}
	if doc == nil {
		return statuses
	}

	for _, e := range doc.List() {
		status := BlockStatus{Name: e.Name, Kind: string(e.Kind), Checks: []CheckResult{}}
		switch {
		case e.Kind == caddyfile.KindOther:
			status.Checks = append(status.Checks, CheckResult{
				Status:  statusWarning,
				Message: "custom block, edit with an editor only",
			})
		case e.Target == "":
			status.Checks = append(status.Checks, CheckResult{
				Status:  statusWarning,
				Message: fmt.Sprintf("%s without a target", e.Kind),
			})
		default:
			status.Checks = append(status.Checks, CheckResult{
				Status:  statusSuccess,
				Message: fmt.Sprintf("%s %s", e.Kind, e.Target),
			})
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	if len(report.Blocks) == 0 {
		output.Print("No site blocks")
		return
	}
	output.Print("Checking site blocks...")
	for _, b := range report.Blocks {
		check := b.Checks[len(b.Checks)-1]
		displayCheck(CheckResult{Status: check.Status, Message: b.Name + " - " + check.Message})
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case statusSuccess:
		output.Success("%s", check.Message)
	case statusWarning:
		output.Warn("%s", check.Message)
	case statusError:
		output.Error("%s", check.Message)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
