package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/output"
)

var (
	editType     string
	editTo       string
	editRedirect string
)

var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Change a site block",
	Long: `Replace an existing site block in place.

With --to, --redirect or --type the block is re-rendered from a template.
Without them the block body is opened in an editor ($VISUAL, $EDITOR or vi).
Either way the change is validated before it is kept.

Examples:
  caddyman edit app.example.com --to 127.0.0.1:4000
  caddyman edit old.example.com --redirect https://new.example.com
  EDITOR=nano caddyman edit app.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editType, "type", "t", "", "Block type (reverse_proxy, redirect)")
	editCmd.Flags().StringVar(&editTo, "to", "", "Upstream address for reverse_proxy")
	editCmd.Flags().StringVar(&editRedirect, "redirect", "", "Redirect destination URL")

	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := validateName(name); err != nil {
		return err
	}

	s, err := newSession()
	if err != nil {
		return err
	}

	if editType != "" || editTo != "" || editRedirect != "" {
		kind, target, err := resolveKind(editType, editTo, editRedirect)
		if err != nil {
			return err
		}
		if err := s.ensureEmail(); err != nil {
			return err
		}
		res, err := s.mgr.Replace(commandContext(cmd), name, kind, target, mutateOptions())
		return s.reportResult(res, err, "Updated %s", name)
	}

	if jsonOutput {
		return errors.InvalidInput("interactive edit is not available with --json; use --to or --redirect")
	}

	block, err := s.mgr.Show(name)
	if err != nil {
		return err
	}
	body, err := editInEditor(block.Body)
	if err != nil {
		return err
	}
	if body == block.Body {
		output.Info("No changes")
		return nil
	}
	if err := s.ensureEmail(); err != nil {
		return err
	}

	res, err := s.mgr.ReplaceBody(commandContext(cmd), name, body, mutateOptions())
	return s.reportResult(res, err, "Updated %s", name)
}

// editInEditor writes text to a temp file, opens it in the user's editor
// and returns what was saved
func editInEditor(text string) (string, error) {
	editor := getEditor()
	if _, err := deps.CommandRunner.LookPath(editor[0]); err != nil {
		return "", errors.Precondition(fmt.Sprintf("editor not found: %s", editor[0]))
	}

	f, err := os.CreateTemp("", "caddyman-*.caddy")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	output.Info("Opening block in %s...", editor[0])
	args := append(editor[1:], path)
	if err := deps.CommandRunner.RunInteractive(editor[0], args...); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited block: %w", err)
	}
	edited := string(data)
	if edited != "" && !strings.HasSuffix(edited, "\n") {
		edited += "\n"
	}
	return edited, nil
}

// getEditor returns the editor command split into words
func getEditor() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}
