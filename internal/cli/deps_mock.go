package cli

import (
	"os"
	"path/filepath"

	"github.com/ksyq12/caddyman/internal/config"
	"github.com/ksyq12/caddyman/internal/input"
	"github.com/ksyq12/caddyman/internal/platform"
	"github.com/ksyq12/caddyman/internal/service"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg     *config.Config
	LoadErr error
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	// Hand out a copy so --caddyfile overrides do not leak between runs
	cfg := *m.Cfg
	return &cfg, nil
}

// MockServiceFactory is a test double for ServiceFactory
type MockServiceFactory struct {
	Service *service.MockService
}

func (m *MockServiceFactory) Create(cfg *config.Config) service.Service {
	if m.Service == nil {
		m.Service = service.NewMockService()
	}
	return m.Service
}

// MockCommandRunner is a test double for CommandRunner
type MockCommandRunner struct {
	Calls        [][]string
	LookPathFunc func(file string) (string, error)
	RunFunc      func(name string, args ...string) error
	Err          error
}

func (m *MockCommandRunner) RunInteractive(name string, args ...string) error {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	if m.RunFunc != nil {
		return m.RunFunc(name, args...)
	}
	return m.Err
}

func (m *MockCommandRunner) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return "/usr/bin/" + file, nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:   &MockConfigLoader{Cfg: config.New()},
			ServiceFactory: &MockServiceFactory{Service: service.NewMockService()},
			StdinReader:    input.NewStringReader("y"),
			CommandRunner:  &MockCommandRunner{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithService sets the service handed out by the factory
func (b *MockDependenciesBuilder) WithService(svc *service.MockService) *MockDependenciesBuilder {
	b.deps.ServiceFactory = &MockServiceFactory{Service: svc}
	return b
}

// WithStdinInput sets the stdin lines for the mock
func (b *MockDependenciesBuilder) WithStdinInput(lines ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(lines...)
	return b
}

// WithCommandRunner sets the editor runner
func (b *MockDependenciesBuilder) WithCommandRunner(r *MockCommandRunner) *MockDependenciesBuilder {
	b.deps.CommandRunner = r
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// TestHelper provides utilities for CLI tests
type TestHelper struct {
	T interface {
		Helper()
		Cleanup(func())
		TempDir() string
	}
	OldDeps    *Dependencies
	Service    *service.MockService
	MockConfig *MockConfigLoader
	Runner     *MockCommandRunner
	Dir        string
	Caddyfile  string
	EnvFile    string
}

// NewTestHelper points the CLI at a temporary Caddyfile with the given
// content and an env file holding an email, and installs mock
// dependencies
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
	TempDir() string
}, caddyfile string) *TestHelper {
	t.Helper()

	dir := t.TempDir()
	helper := &TestHelper{
		T:         t,
		OldDeps:   deps,
		Service:   service.NewMockService(),
		Runner:    &MockCommandRunner{},
		Dir:       dir,
		Caddyfile: filepath.Join(dir, "Caddyfile"),
		EnvFile:   filepath.Join(dir, platform.EnvFileName),
	}
	if err := os.WriteFile(helper.Caddyfile, []byte(caddyfile), 0644); err != nil {
		panic(err)
	}
	if err := os.WriteFile(helper.EnvFile, []byte("email=\"ops@example.com\"\n"), 0600); err != nil {
		panic(err)
	}

	cfg := config.New()
	cfg.Caddyfile = helper.Caddyfile
	cfg.EnvFile = helper.EnvFile
	helper.MockConfig = &MockConfigLoader{Cfg: cfg}

	deps = NewMockDeps().
		WithConfigLoader(helper.MockConfig).
		WithService(helper.Service).
		WithCommandRunner(helper.Runner).
		Build()
	resetFlags()

	t.Cleanup(func() {
		deps = helper.OldDeps
		resetFlags()
	})

	return helper
}

// SetStdinInput sets the stdin lines
func (h *TestHelper) SetStdinInput(lines ...string) {
	deps.StdinReader = input.NewStringReader(lines...)
}

// ClearEmail removes the env file so the email prompt runs
func (h *TestHelper) ClearEmail() {
	_ = os.Remove(h.EnvFile)
}

// Read returns the current Caddyfile content
func (h *TestHelper) Read() string {
	data, err := os.ReadFile(h.Caddyfile)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// resetFlags restores every flag variable to its default
func resetFlags() {
	jsonOutput, verbose, dryRun, noReload = false, false, false, false
	caddyfilePath, logLevel = "", ""
	addType, addTo, addRedirect = "", "", ""
	subTo, subRedirect = "", ""
	editType, editTo, editRedirect = "", "", ""
	removeForce, restoreForce = false, false
}
