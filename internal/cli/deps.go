package cli

import (
	"os"
	"os/exec"

	"github.com/ksyq12/caddyman/internal/config"
	"github.com/ksyq12/caddyman/internal/input"
	"github.com/ksyq12/caddyman/internal/service"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader   ConfigLoader
	ServiceFactory ServiceFactory
	StdinReader    input.Reader
	CommandRunner  CommandRunner
}

// ConfigLoader handles configuration loading
type ConfigLoader interface {
	Load() (*config.Config, error)
}

// ServiceFactory creates the validate/reload collaborator for a config
type ServiceFactory interface {
	Create(cfg *config.Config) service.Service
}

// CommandRunner runs the editor for the edit command
type CommandRunner interface {
	RunInteractive(name string, args ...string) error
	LookPath(file string) (string, error)
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:   &realConfigLoader{},
	ServiceFactory: &realServiceFactory{},
	StdinReader:    input.NewStdinReader(),
	CommandRunner:  &realCommandRunner{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

type realServiceFactory struct{}

func (r *realServiceFactory) Create(cfg *config.Config) service.Service {
	return service.NewCaddy(service.CaddyOptions{
		Binary:    cfg.Caddy.Binary,
		Unit:      cfg.Caddy.Service,
		Adapter:   cfg.Caddy.Adapter,
		Caddyfile: cfg.Caddyfile,
	})
}

type realCommandRunner struct{}

func (r *realCommandRunner) RunInteractive(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r *realCommandRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
