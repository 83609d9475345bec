package cli

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/caddyman/internal/caddyfile"
	"github.com/ksyq12/caddyman/internal/config"
	"github.com/ksyq12/caddyman/internal/envstore"
	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/input"
	"github.com/ksyq12/caddyman/internal/manager"
	"github.com/ksyq12/caddyman/internal/output"
	"github.com/ksyq12/caddyman/internal/platform"
	"github.com/ksyq12/caddyman/internal/service"
)

// session holds what a command needs to act on one Caddyfile
type session struct {
	cfg *config.Config
	svc service.Service
	mgr *manager.Manager
}

// newSession loads config, applies the --caddyfile override and builds
// the manager
func newSession() (*session, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if caddyfilePath != "" {
		abs, err := filepath.Abs(caddyfilePath)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid --caddyfile %q", caddyfilePath))
		}
		cfg.Caddyfile = abs
		// The settings file follows an explicitly chosen Caddyfile.
		cfg.EnvFile = filepath.Join(filepath.Dir(abs), platform.EnvFileName)
	}
	if cfg.Caddyfile == "" {
		return nil, errors.Precondition("no Caddyfile configured; pass --caddyfile or set caddyfile in " + configHint())
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = filepath.Join(filepath.Dir(cfg.Caddyfile), platform.EnvFileName)
	}

	svc := deps.ServiceFactory.Create(cfg)
	mgr := manager.New(manager.Settings{
		Caddyfile:       cfg.Caddyfile,
		DefaultUpstream: cfg.DefaultUpstream,
		CommandTimeout:  cfg.CommandTimeout,
		LockTimeout:     cfg.LockTimeout,
	}, svc)

	return &session{cfg: cfg, svc: svc, mgr: mgr}, nil
}

func configHint() string {
	if p, err := config.ConfigPath(); err == nil {
		return p
	}
	return "the config file"
}

// mutateOptions returns the options from the global flags
func mutateOptions() manager.Options {
	return manager.Options{DryRun: dryRun, NoReload: noReload}
}

// commandContext returns the command's context, or a background context
// when the run function is called directly
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// ensureEmail checks the ACME email setting once before a mutation and
// asks for it when missing
func (s *session) ensureEmail() error {
	store := envstore.New(s.cfg.EnvFile)
	email, ok, err := store.Get(envstore.KeyEmail)
	if err != nil {
		return errors.Wrap(errors.ErrCodePrecondition, "failed to read email setting", err)
	}
	if ok {
		return validateEmail(email)
	}

	if dryRun {
		output.Warn("No email set in %s; it will be asked for when the change is applied", store.Path())
		return nil
	}
	if jsonOutput {
		return errors.Precondition("no email set; run 'caddyman email <address>' first")
	}

	output.Info("Caddy needs an email address for certificate registration")
	email, err = input.Prompt(deps.StdinReader, os.Stdout, "Email: ")
	if err != nil || email == "" {
		return errors.Precondition("an email address is required")
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := store.Set(envstore.KeyEmail, email); err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	output.Success("Email saved to %s", store.Path())
	return nil
}

// CommandResult is the JSON form of a mutating command's outcome
type CommandResult struct {
	Success bool `json:"success"`
	*manager.Result
	Diff   string           `json:"diff,omitempty"`
	Error  string           `json:"error,omitempty"`
	Code   errors.ErrorCode `json:"code,omitempty"`
	Detail string           `json:"detail,omitempty"`
}

// reportResult renders the outcome of a mutation and passes err through
// so the process exits non-zero
func (s *session) reportResult(res *manager.Result, err error, successMsg string, args ...interface{}) error {
	path := s.cfg.Caddyfile

	if jsonOutput {
		out := CommandResult{Success: err == nil, Result: res}
		if res != nil && res.DryRun {
			out.Diff = res.Diff(path)
		}
		if err != nil {
			out.Error = err.Error()
			out.Code = errors.CodeOf(err)
			out.Detail = errors.DetailOf(err)
		}
		if jerr := output.JSON(out); jerr != nil {
			return jerr
		}
		return err
	}

	if err != nil {
		reportError(res, err, path)
		return err
	}

	if res.DryRun {
		if !res.Changed() {
			output.Info("Dry run: no changes")
			return nil
		}
		output.Info("Dry run: %s would change as follows", path)
		output.Diff(res.Diff(path))
		return nil
	}

	output.Success(successMsg, args...)
	if res.Backup != nil {
		output.Info("Backup saved to %s", res.Backup.Path)
	}
	if res.State == manager.Validated {
		output.Info("Caddy was not reloaded (--no-reload)")
	}
	return nil
}

func reportError(res *manager.Result, err error, path string) {
	switch {
	case errors.Is(err, errors.ErrValidationFailed):
		output.Error("Caddy rejected the new configuration; %s was left unchanged", path)
		output.Detail(errors.DetailOf(err))
		if res != nil && res.Backup != nil {
			output.Info("Backup of the original: %s", res.Backup.Path)
		}
	case errors.Is(err, errors.ErrReloadFailed):
		output.Warn("%s was updated and validated, but caddy was not reloaded", path)
		output.Info("Run 'caddyman reload' once caddy is reachable")
	case errors.Is(err, errors.ErrBlockExists):
		output.Warn("A block with this name already exists:")
		output.Detail(errors.DetailOf(err))
		output.Info("Use 'caddyman edit' to change it")
	}
}

// resolveKind turns the --type/--to/--redirect flags into a kind and target
func resolveKind(typeFlag, to, redirect string) (caddyfile.Kind, string, error) {
	kind := caddyfile.KindReverseProxy
	if typeFlag != "" {
		k, ok := caddyfile.ParseKind(typeFlag)
		if !ok || k == caddyfile.KindOther {
			return "", "", errors.InvalidInput(fmt.Sprintf("invalid type %q (valid: %s, %s)",
				typeFlag, caddyfile.KindReverseProxy, caddyfile.KindRedirect))
		}
		kind = k
	}

	if redirect != "" {
		if typeFlag != "" && kind != caddyfile.KindRedirect {
			return "", "", errors.InvalidInput("--redirect cannot be combined with --type " + typeFlag)
		}
		if to != "" {
			return "", "", errors.InvalidInput("use either --to or --redirect, not both")
		}
		kind, to = caddyfile.KindRedirect, redirect
	}

	switch kind {
	case caddyfile.KindRedirect:
		if err := validateRedirectURL(to); err != nil {
			return "", "", err
		}
	default:
		if err := validateUpstream(to); err != nil {
			return "", "", err
		}
	}
	return kind, to, nil
}

// validateName checks if a block name is usable as a site address
func validateName(name string) error {
	if name == "" {
		return errors.InvalidInput("name cannot be empty")
	}
	if strings.ContainsAny(name, " \t") {
		return errors.InvalidInput("name cannot contain spaces")
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return errors.InvalidInput("name cannot start or end with hyphen")
	}
	return nil
}

// validateUpstream checks a reverse proxy target; empty means the default
func validateUpstream(target string) error {
	if target == "" {
		return nil
	}
	if strings.ContainsAny(target, " \t{}") {
		return errors.InvalidInput(fmt.Sprintf("invalid upstream %q", target))
	}

	// Allow host:port format without scheme
	u := target
	if !strings.Contains(u, "://") {
		u = "http://" + u
	}
	if _, err := url.Parse(u); err != nil {
		return errors.InvalidInput(fmt.Sprintf("invalid upstream %q: %v", target, err))
	}
	return nil
}

// placeholderPattern matches caddy placeholders such as {uri}
var placeholderPattern = regexp.MustCompile(`\{[^{}\s]*\}`)

// validateRedirectURL checks a redirect destination; placeholders are
// allowed anywhere
func validateRedirectURL(target string) error {
	if target == "" {
		return errors.InvalidInput("a redirect URL is required (--redirect)")
	}
	if strings.ContainsAny(target, " \t") {
		return errors.InvalidInput("redirect URL cannot contain spaces")
	}
	if strings.HasPrefix(target, "/") {
		return nil
	}
	u, err := url.Parse(placeholderPattern.ReplaceAllString(target, ""))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.InvalidInput(fmt.Sprintf("redirect URL must be absolute (https://...) or a path: %q", target))
	}
	return nil
}

// validateEmail checks for a bare address such as ops@example.com
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return errors.InvalidInput(fmt.Sprintf("invalid email address %q", email))
	}
	return nil
}
