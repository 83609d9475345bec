package manager

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ksyq12/caddyman/internal/backup"
	"github.com/ksyq12/caddyman/internal/caddyfile"
	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/filelock"
	"github.com/ksyq12/caddyman/internal/logger"
	"github.com/ksyq12/caddyman/internal/service"
)

// Settings configures a Manager.
type Settings struct {
	Caddyfile       string
	DefaultUpstream string
	CommandTimeout  time.Duration // bound on each validate and reload call
	LockTimeout     time.Duration // how long to wait for another caddyman
}

// Options alter a single mutation.
type Options struct {
	DryRun   bool // compute the change, write nothing
	NoReload bool // stop at Validated
}

// Result describes the outcome of a mutation. It is returned alongside
// errors too, so callers can report the backup and the final state.
type Result struct {
	Operation  string           `json:"operation"`
	Name       string           `json:"name,omitempty"`
	State      State            `json:"state"`
	Block      *caddyfile.Block `json:"block,omitempty"`
	Backup     *backup.Handle   `json:"backup,omitempty"`
	Diagnostic string           `json:"diagnostic,omitempty"`
	DryRun     bool             `json:"dry_run,omitempty"`

	Before string `json:"-"`
	After  string `json:"-"`
}

// Changed reports whether the mutation altered the file content.
func (r *Result) Changed() bool {
	return r.Before != r.After
}

// Mutation edits a parsed document and returns the block it touched, if any.
type Mutation func(doc *caddyfile.Document) (*caddyfile.Block, error)

// transform maps the current file content to the new content.
type transform func(before string) (after string, block *caddyfile.Block, err error)

// Manager runs every change to one Caddyfile through the
// lock, snapshot, commit, validate and reload pipeline.
type Manager struct {
	settings Settings
	writer   *backup.Writer
	svc      service.Service
}

// New creates a Manager using the wall-clock backup writer
func New(settings Settings, svc service.Service) *Manager {
	return NewWithWriter(settings, svc, backup.NewWriter())
}

// NewWithWriter creates a Manager with a custom backup writer (for testing)
func NewWithWriter(settings Settings, svc service.Service, writer *backup.Writer) *Manager {
	if settings.DefaultUpstream == "" {
		settings.DefaultUpstream = caddyfile.DefaultUpstream
	}
	if settings.CommandTimeout <= 0 {
		settings.CommandTimeout = 30 * time.Second
	}
	return &Manager{settings: settings, writer: writer, svc: svc}
}

// Path returns the managed Caddyfile.
func (m *Manager) Path() string {
	return m.settings.Caddyfile
}

// Apply parses the Caddyfile, runs mutate against it and, unless
// opts.DryRun is set, persists and applies the result.
func (m *Manager) Apply(ctx context.Context, op, name string, mutate Mutation, opts Options) (*Result, error) {
	return m.run(ctx, op, name, func(before string) (string, *caddyfile.Block, error) {
		doc, err := m.parse(before)
		if err != nil {
			return "", nil, err
		}
		b, err := mutate(doc)
		if err != nil {
			return "", nil, err
		}
		return doc.String(), b, nil
	}, opts)
}

func (m *Manager) run(ctx context.Context, op, name string, fn transform, opts Options) (*Result, error) {
	res := &Result{Operation: op, Name: name, State: Idle, DryRun: opts.DryRun}
	fields := logger.Fields{"op": op, "name": name, "file": m.settings.Caddyfile}

	if err := m.requireFile(); err != nil {
		return res, err
	}
	if !opts.DryRun {
		lock, err := filelock.Acquire(ctx, m.settings.Caddyfile, m.settings.LockTimeout)
		if err != nil {
			return res, err
		}
		defer lock.Release()
	}

	before, err := m.read()
	if err != nil {
		return res, err
	}
	after, block, err := fn(before)
	if err != nil {
		return res, err
	}
	res.Before, res.After, res.Block = before, after, block

	if opts.DryRun {
		logger.DebugFields("Dry run, nothing written", fields)
		return res, nil
	}

	h, err := m.writer.Snapshot(m.settings.Caddyfile)
	if err != nil {
		return res, err
	}
	res.Backup = h

	if err := m.writer.Commit(m.settings.Caddyfile, []byte(after)); err != nil {
		return res, errors.Wrap(errors.ErrCodeInternal, "failed to write Caddyfile", err)
	}
	m.transition(res, Staged, fields)

	vctx, cancel := context.WithTimeout(ctx, m.settings.CommandTimeout)
	diag, verr := m.svc.Validate(vctx, m.settings.Caddyfile)
	cancel()
	res.Diagnostic = diag
	if verr != nil {
		m.transition(res, Failed, fields)
		if rerr := m.writer.Rollback(h); rerr != nil {
			return res, errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("validation failed and rollback failed; restore %s by hand", h.Path), rerr)
		}
		m.transition(res, RolledBack, fields)
		return res, errors.ValidationFailed(diag, verr)
	}
	m.transition(res, Validated, fields)

	if opts.NoReload {
		return res, nil
	}

	if err := m.reload(ctx); err != nil {
		logger.WarnFields("Caddyfile changed but reload failed", logger.Fields{"file": m.settings.Caddyfile, "error": err.Error()})
		return res, err
	}
	m.transition(res, Applied, fields)
	return res, nil
}

func (m *Manager) transition(res *Result, to State, fields logger.Fields) {
	f := logger.Fields{"from": res.State.String(), "to": to.String()}
	for k, v := range fields {
		f[k] = v
	}
	logger.InfoFields("State change", f)
	res.State = to
}

// requireFile fails with a precondition error when the Caddyfile is
// missing. Mutations check it before taking the lock so no lock file is
// created next to a missing Caddyfile.
func (m *Manager) requireFile() error {
	if _, err := os.Stat(m.settings.Caddyfile); os.IsNotExist(err) {
		return m.missing()
	}
	return nil
}

func (m *Manager) missing() error {
	return errors.Precondition(fmt.Sprintf("Caddyfile %s does not exist", m.settings.Caddyfile))
}

// read returns the current Caddyfile content. The file must exist.
func (m *Manager) read() (string, error) {
	data, err := os.ReadFile(m.settings.Caddyfile)
	if os.IsNotExist(err) {
		return "", m.missing()
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePrecondition, "failed to read Caddyfile", err)
	}
	return string(data), nil
}

func (m *Manager) parse(text string) (*caddyfile.Document, error) {
	doc, err := caddyfile.Parse(text)
	if err != nil {
		return nil, err
	}
	doc.DefaultUpstream = m.settings.DefaultUpstream
	return doc, nil
}

func (m *Manager) load() (*caddyfile.Document, error) {
	text, err := m.read()
	if err != nil {
		return nil, err
	}
	return m.parse(text)
}

func (m *Manager) reload(ctx context.Context) error {
	rctx, cancel := context.WithTimeout(ctx, m.settings.CommandTimeout)
	defer cancel()
	if err := m.svc.Reload(rctx); err != nil {
		return errors.ReloadFailed(err)
	}
	return nil
}
