package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ksyq12/caddyman/internal/executor"
	"github.com/ksyq12/caddyman/internal/logger"
)

// CaddyOptions configures the Caddy service.
type CaddyOptions struct {
	Binary    string // caddy executable
	Unit      string // systemd unit; empty skips systemctl
	Adapter   string // config adapter passed to caddy
	Caddyfile string // live config, used by the reload fallback
}

// Caddy implements Service by running the caddy binary.
type Caddy struct {
	opts CaddyOptions
	exec executor.CommandExecutor
}

// NewCaddy creates a Caddy service using the system executor
func NewCaddy(opts CaddyOptions) *Caddy {
	return NewCaddyWithExecutor(opts, executor.NewSystemExecutor())
}

// NewCaddyWithExecutor creates a Caddy service with a custom executor (for testing)
func NewCaddyWithExecutor(opts CaddyOptions, exec executor.CommandExecutor) *Caddy {
	if opts.Binary == "" {
		opts.Binary = "caddy"
	}
	if opts.Adapter == "" {
		opts.Adapter = "caddyfile"
	}
	return &Caddy{opts: opts, exec: exec}
}

// Name returns the service name
func (c *Caddy) Name() string {
	return "caddy"
}

// Validate runs caddy validate against path
func (c *Caddy) Validate(ctx context.Context, path string) (string, error) {
	output, err := c.exec.Execute(ctx, c.opts.Binary, "validate", "--config", path, "--adapter", c.opts.Adapter)
	diagnostic := strings.TrimSpace(string(output))
	if err != nil {
		return diagnostic, fmt.Errorf("caddy validate failed: %w", err)
	}
	logger.DebugFields("Validated", logger.Fields{"config": path})
	return diagnostic, nil
}

// Reload reloads caddy through systemd, falling back to caddy reload
func (c *Caddy) Reload(ctx context.Context) error {
	if c.opts.Unit != "" {
		output, err := c.exec.Execute(ctx, "systemctl", "reload", c.opts.Unit)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		logger.DebugFields("systemctl reload failed, trying caddy reload", logger.Fields{
			"unit":   c.opts.Unit,
			"output": strings.TrimSpace(string(output)),
		})
	}

	output, err := c.exec.Execute(ctx, c.opts.Binary, "reload", "--config", c.opts.Caddyfile, "--adapter", c.opts.Adapter)
	if err != nil {
		return fmt.Errorf("failed to reload caddy: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Version returns the first line of caddy version
func (c *Caddy) Version(ctx context.Context) (string, error) {
	output, err := c.exec.Execute(ctx, c.opts.Binary, "version")
	if err != nil {
		return "", fmt.Errorf("failed to get caddy version: %w", err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	return line, nil
}

// Installed reports whether the caddy binary is on PATH
func (c *Caddy) Installed() bool {
	_, err := c.exec.LookPath(c.opts.Binary)
	return err == nil
}
