// Package platform provides platform-specific default locations for the
// Caddyfile and the settings file caddyman keeps next to it.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvFileName is the settings file kept in the Caddyfile's directory.
const EnvFileName = "caddyman.env"

// Paths contains the detected default paths.
type Paths struct {
	Caddyfile string
	EnvFile   string
}

// DetectPaths returns platform-specific default paths for the Caddyfile.
// It checks for common installation locations based on the OS.
func DetectPaths() (*Paths, error) {
	return detect(runtime.GOOS, pathExists)
}

func detect(goos string, exists func(string) bool) (*Paths, error) {
	switch goos {
	case "darwin":
		return detectDarwinPaths(exists)
	case "linux", "freebsd", "openbsd", "netbsd":
		return detectUnixPaths(exists)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// detectDarwinPaths detects paths for macOS (Homebrew installations).
func detectDarwinPaths(exists func(string) bool) (*Paths, error) {
	// Apple Silicon Homebrew first, then Intel
	for _, prefix := range []string{"/opt/homebrew", "/usr/local"} {
		if exists(prefix) {
			return inDir(filepath.Join(prefix, "etc")), nil
		}
	}
	return nil, fmt.Errorf("homebrew installation not found (checked /opt/homebrew and /usr/local)")
}

// detectUnixPaths uses the location of the official caddy packages.
// BSD ports install under /usr/local/etc.
func detectUnixPaths(exists func(string) bool) (*Paths, error) {
	if exists("/usr/local/etc/caddy/Caddyfile") && !exists("/etc/caddy") {
		return inDir("/usr/local/etc/caddy"), nil
	}
	return inDir("/etc/caddy"), nil
}

func inDir(dir string) *Paths {
	return &Paths{
		Caddyfile: filepath.Join(dir, "Caddyfile"),
		EnvFile:   filepath.Join(dir, EnvFileName),
	}
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
