package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ksyq12/caddyman/internal/backup"
	"github.com/ksyq12/caddyman/internal/caddyfile"
	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/filelock"
)

// Add appends a new block. An empty reverse proxy target uses the
// configured default upstream.
func (m *Manager) Add(ctx context.Context, name string, kind caddyfile.Kind, target string, opts Options) (*Result, error) {
	return m.Apply(ctx, "add", name, func(doc *caddyfile.Document) (*caddyfile.Block, error) {
		return doc.Add(name, kind, target)
	}, opts)
}

// AddSubdomain adds a block for sub under domain. The parent block does
// not need to exist.
func (m *Manager) AddSubdomain(ctx context.Context, domain, sub string, kind caddyfile.Kind, target string, opts Options) (*Result, error) {
	name, err := SubdomainName(domain, sub)
	if err != nil {
		return &Result{Operation: "subdomain", State: Idle}, err
	}
	res, err := m.Add(ctx, name, kind, target, opts)
	res.Operation = "subdomain"
	return res, err
}

// Replace re-renders an existing block in place.
func (m *Manager) Replace(ctx context.Context, name string, kind caddyfile.Kind, target string, opts Options) (*Result, error) {
	return m.Apply(ctx, "edit", name, func(doc *caddyfile.Document) (*caddyfile.Block, error) {
		return doc.Replace(name, kind, target)
	}, opts)
}

// ReplaceBody swaps the body of an existing block in place.
func (m *Manager) ReplaceBody(ctx context.Context, name, body string, opts Options) (*Result, error) {
	return m.Apply(ctx, "edit", name, func(doc *caddyfile.Document) (*caddyfile.Block, error) {
		return doc.ReplaceBody(name, body)
	}, opts)
}

// Remove deletes a block.
func (m *Manager) Remove(ctx context.Context, name string, opts Options) (*Result, error) {
	return m.Apply(ctx, "remove", name, func(doc *caddyfile.Document) (*caddyfile.Block, error) {
		b := doc.Get(name)
		if err := doc.Remove(name); err != nil {
			return nil, err
		}
		return b, nil
	}, opts)
}

// Restore replaces the Caddyfile with the content of one of its backups.
// The current content is snapshotted first, and the restored file goes
// through validation like any other change.
func (m *Manager) Restore(ctx context.Context, file string, opts Options) (*Result, error) {
	h, err := m.writer.Lookup(m.settings.Caddyfile, file)
	if err != nil {
		return &Result{Operation: "restore", State: Idle}, err
	}
	return m.run(ctx, "restore", filepath.Base(h.Path), func(string) (string, *caddyfile.Block, error) {
		data, err := os.ReadFile(h.Path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read backup %s: %w", h.Path, err)
		}
		if _, err := caddyfile.Parse(string(data)); err != nil {
			return "", nil, err
		}
		return string(data), nil, nil
	}, opts)
}

// List returns the named blocks in file order.
func (m *Manager) List() ([]caddyfile.Entry, error) {
	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	return doc.List(), nil
}

// Show returns one block.
func (m *Manager) Show(name string) (*caddyfile.Block, error) {
	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	b := doc.Get(name)
	if b == nil {
		return nil, errors.NotFound(name)
	}
	return b, nil
}

// Backup snapshots the Caddyfile without changing it.
func (m *Manager) Backup(ctx context.Context) (*backup.Handle, error) {
	if err := m.requireFile(); err != nil {
		return nil, err
	}
	lock, err := filelock.Acquire(ctx, m.settings.Caddyfile, m.settings.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	if _, err := m.read(); err != nil {
		return nil, err
	}
	return m.writer.Snapshot(m.settings.Caddyfile)
}

// Backups lists the snapshots of the Caddyfile, newest first.
func (m *Manager) Backups() ([]backup.Handle, error) {
	return m.writer.List(m.settings.Caddyfile)
}

// Validate runs the validator against the Caddyfile as it is on disk.
func (m *Manager) Validate(ctx context.Context) (string, error) {
	if _, err := m.read(); err != nil {
		return "", err
	}
	vctx, cancel := context.WithTimeout(ctx, m.settings.CommandTimeout)
	defer cancel()

	diag, err := m.svc.Validate(vctx, m.settings.Caddyfile)
	if err != nil {
		return diag, &errors.BlockError{
			Code:    errors.ErrCodeValidation,
			Message: "Caddyfile rejected by validator",
			Detail:  diag,
			Err:     err,
		}
	}
	return diag, nil
}

// Reload asks the live service to pick up the Caddyfile.
func (m *Manager) Reload(ctx context.Context) error {
	if _, err := m.read(); err != nil {
		return err
	}
	return m.reload(ctx)
}

// SubdomainName joins sub and domain. A sub that already ends in domain is
// returned unchanged.
func SubdomainName(domain, sub string) (string, error) {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	sub = strings.TrimSuffix(strings.TrimSpace(sub), ".")
	if domain == "" || sub == "" {
		return "", errors.InvalidInput("domain and subdomain are required")
	}
	if sub == domain || strings.HasSuffix(sub, "."+domain) {
		return sub, nil
	}
	if strings.HasPrefix(sub, ".") || strings.HasPrefix(domain, ".") {
		return "", errors.InvalidInput(fmt.Sprintf("invalid subdomain %q of %q", sub, domain))
	}
	return sub + "." + domain, nil
}
