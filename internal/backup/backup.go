// Package backup snapshots the Caddyfile before mutation and writes new
// content atomically.
//
// Backups are sibling files named <path>.<YYYYMMDD-HHMMSS>.bak (with a -N
// suffix when two snapshots land in the same second). They are never
// pruned.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/logger"
)

// timestampFormat is the timestamp embedded in backup file names.
const timestampFormat = "20060102-150405"

// maxCollisions bounds the -N suffix search within one second.
const maxCollisions = 1000

// Handle identifies one snapshot.
type Handle struct {
	Path      string    `json:"path"`       // backup file
	Source    string    `json:"source"`     // file that was snapshotted
	CreatedAt time.Time `json:"created_at"` // from the file name
	Size      int64     `json:"size"`

	seq int // -N collision suffix
}

// Writer creates snapshots and commits new content.
type Writer struct {
	now func() time.Time
}

// NewWriter creates a Writer using the wall clock.
func NewWriter() *Writer {
	return &Writer{now: time.Now}
}

// NewWriterWithClock creates a Writer with a custom clock (for testing).
func NewWriterWithClock(now func() time.Time) *Writer {
	return &Writer{now: now}
}

// Snapshot copies the current bytes of path to a new, uniquely named
// backup file. The backup is fsynced before Snapshot returns.
func (w *Writer) Snapshot(path string) (*Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackup, "failed to read file for backup", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackup, "failed to stat file for backup", err)
	}

	ts := w.now()
	base := fmt.Sprintf("%s.%s", path, ts.Format(timestampFormat))

	for n := 0; n < maxCollisions; n++ {
		name := base + ".bak"
		if n > 0 {
			name = fmt.Sprintf("%s-%d.bak", base, n)
		}

		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeBackup, "failed to create backup file", err)
		}

		if err := writeAndSync(f, data); err != nil {
			_ = os.Remove(name)
			return nil, errors.Wrap(errors.ErrCodeBackup, "failed to write backup file", err)
		}

		logger.DebugFields("Snapshot created", logger.Fields{"source": path, "backup": name, "bytes": len(data)})
		return &Handle{
			Path:      name,
			Source:    path,
			CreatedAt: ts.Truncate(time.Second),
			Size:      int64(len(data)),
			seq:       n,
		}, nil
	}

	return nil, errors.Wrap(errors.ErrCodeBackup, "failed to create backup file",
		fmt.Errorf("too many backups for %s", ts.Format(timestampFormat)))
}

// Commit replaces the content of path atomically, keeping its permissions.
// Readers see either the old or the new content, never a partial write.
func (w *Writer) Commit(path string, content []byte) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return WriteFileAtomic(path, content, perm)
}

// Rollback restores the snapshot's bytes over its source file.
func (w *Writer) Rollback(h *Handle) error {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", h.Path, err)
	}
	if err := w.Commit(h.Source, data); err != nil {
		return fmt.Errorf("failed to restore %s: %w", h.Source, err)
	}
	logger.InfoFields("Rolled back", logger.Fields{"file": h.Source, "backup": h.Path})
	return nil
}

// List returns all backups of path, newest first.
func (w *Writer) List(path string) ([]Handle, error) {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var handles []Handle
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		h, ok := parseName(path, filepath.Join(dir, entry.Name()))
		if !ok {
			continue
		}
		if info, err := entry.Info(); err == nil {
			h.Size = info.Size()
		}
		handles = append(handles, *h)
	}

	sort.Slice(handles, func(i, j int) bool {
		if !handles[i].CreatedAt.Equal(handles[j].CreatedAt) {
			return handles[i].CreatedAt.After(handles[j].CreatedAt)
		}
		return handles[i].seq > handles[j].seq
	})

	return handles, nil
}

// Lookup resolves a backup of path by file name or full path.
func (w *Writer) Lookup(path, name string) (*Handle, error) {
	candidate := name
	if !filepath.IsAbs(candidate) && !strings.ContainsRune(candidate, filepath.Separator) {
		candidate = filepath.Join(filepath.Dir(path), name)
	}
	h, ok := parseName(path, candidate)
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("%s is not a backup of %s", name, path))
	}
	info, err := os.Stat(h.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, "backup not found", err)
	}
	h.Size = info.Size()
	return h, nil
}

// parseName reports whether file is named like a backup of path.
func parseName(path, file string) (*Handle, bool) {
	if filepath.Dir(file) != filepath.Dir(path) {
		return nil, false
	}
	prefix := filepath.Base(path) + "."
	name := filepath.Base(file)
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".bak") {
		return nil, false
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".bak")
	seq := 0
	if len(stamp) > len(timestampFormat) {
		if stamp[len(timestampFormat)] != '-' {
			return nil, false
		}
		n, err := strconv.Atoi(stamp[len(timestampFormat)+1:])
		if err != nil || n <= 0 {
			return nil, false
		}
		seq = n
		stamp = stamp[:len(timestampFormat)]
	}
	ts, err := time.ParseInLocation(timestampFormat, stamp, time.Local)
	if err != nil {
		return nil, false
	}

	return &Handle{Path: file, Source: path, CreatedAt: ts, seq: seq}, true
}
