//go:build integration

package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ksyq12/caddyman/internal/caddyfile"
	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/manager"
	"github.com/ksyq12/caddyman/internal/service"
)

const baseCaddyfile = `{
	admin off
	auto_https off
}

:8081 {
	respond "ok"
}
`

// setupCaddyfile writes a fresh Caddyfile into a temp directory
func setupCaddyfile(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("caddy"); err != nil {
		t.Skip("caddy not installed")
	}

	path := filepath.Join(t.TempDir(), "Caddyfile")
	if err := os.WriteFile(path, []byte(baseCaddyfile), 0644); err != nil {
		t.Fatalf("Failed to write Caddyfile: %v", err)
	}
	return path
}

func newManager(path string) *manager.Manager {
	svc := service.NewCaddy(service.CaddyOptions{Caddyfile: path})
	return manager.New(manager.Settings{
		Caddyfile:      path,
		CommandTimeout: 30 * time.Second,
		LockTimeout:    5 * time.Second,
	}, svc)
}

func TestCaddyValidateIntegration(t *testing.T) {
	path := setupCaddyfile(t)
	m := newManager(path)
	ctx := context.Background()
	opts := manager.Options{NoReload: true}

	t.Run("Add reverse proxy", func(t *testing.T) {
		res, err := m.Add(ctx, "http://app.test", caddyfile.KindReverseProxy, "127.0.0.1:3000", opts)
		if err != nil {
			t.Fatalf("Add failed: %v (%s)", err, errors.DetailOf(err))
		}
		if res.State != manager.Validated {
			t.Errorf("expected state validated, got %s", res.State)
		}
	})

	t.Run("Add redirect", func(t *testing.T) {
		if _, err := m.Add(ctx, "http://old.test", caddyfile.KindRedirect, "http://app.test{uri}", opts); err != nil {
			t.Fatalf("Add failed: %v (%s)", err, errors.DetailOf(err))
		}
	})

	t.Run("Validator rejects bad body and file is restored", func(t *testing.T) {
		before, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		res, err := m.ReplaceBody(ctx, "http://app.test", "\tnot_a_directive foo\n", opts)
		if !errors.Is(err, errors.ErrValidationFailed) {
			t.Fatalf("expected validation failure, got %v", err)
		}
		if res.State != manager.RolledBack {
			t.Errorf("expected state rolled_back, got %s", res.State)
		}
		if !strings.Contains(errors.DetailOf(err), "not_a_directive") {
			t.Errorf("diagnostic does not mention the directive: %q", errors.DetailOf(err))
		}

		after, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(after) != string(before) {
			t.Error("Caddyfile was not restored")
		}
	})

	t.Run("List", func(t *testing.T) {
		entries, err := m.List()
		if err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, e := range entries {
			names = append(names, e.Name)
		}
		want := ":8081,http://app.test,http://old.test"
		if strings.Join(names, ",") != want {
			t.Errorf("expected %s, got %v", want, names)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if _, err := m.Remove(ctx, "http://old.test", opts); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, err := m.Show("http://old.test"); !errors.Is(err, errors.ErrBlockNotFound) {
			t.Errorf("expected not found after remove, got %v", err)
		}
	})
}
