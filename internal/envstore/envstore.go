// Package envstore reads and writes KEY=value settings in an env-style
// file that the Caddy service loads alongside its Caddyfile. caddyman keeps
// the ACME account email there.
package envstore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-envparse"

	"github.com/ksyq12/caddyman/internal/backup"
	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/logger"
)

// KeyEmail is the key holding the ACME account email.
const KeyEmail = "email"

// Store is an env file on disk.
type Store struct {
	path string
}

// New returns a Store for path. The file does not need to exist.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the env file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value of key. A missing file or key reports ok=false.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	env, err := envparse.Parse(f)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	value, ok = env[key]
	return value, ok && value != "", nil
}

// Set writes key=value, replacing an existing assignment in place or
// appending one. Other lines are kept verbatim.
func (s *Store) Set(key, value string) error {
	if key == "" || strings.ContainsAny(key, "= \t\n") {
		return errors.InvalidInput(fmt.Sprintf("invalid key %q", key))
	}
	if strings.ContainsAny(value, "\r\n") {
		return errors.InvalidInput("value cannot span lines")
	}

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	assignment := key + "=" + quote(value)
	lines := strings.SplitAfter(string(data), "\n")
	replaced := false
	for i, line := range lines {
		if lineKey(line) != key {
			continue
		}
		if replaced {
			lines[i] = ""
			continue
		}
		eol := ""
		if strings.HasSuffix(line, "\n") {
			eol = "\n"
		}
		lines[i] = assignment + eol
		replaced = true
	}

	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
	}
	if !replaced {
		if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteString(assignment + "\n")
	}

	perm := os.FileMode(0600)
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	} else if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}

	if err := backup.WriteFileAtomic(s.path, buf.Bytes(), perm); err != nil {
		return err
	}
	logger.DebugFields("Setting saved", logger.Fields{"file": s.path, "key": key})
	return nil
}

// lineKey returns the key assigned on line, or "" for comments and blanks.
func lineKey(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	line = strings.TrimPrefix(line, "export ")
	key, _, found := strings.Cut(line, "=")
	if !found {
		return ""
	}
	return strings.TrimSpace(key)
}

// quote wraps value in double quotes when it would not survive unquoted.
func quote(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t#'\"\\") {
		return value
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(value) + `"`
}
