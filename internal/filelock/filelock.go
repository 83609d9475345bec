// Package filelock serializes caddyman invocations that mutate the same
// Caddyfile with an advisory lock on a sibling "<path>.lock" file.
package filelock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ksyq12/caddyman/internal/errors"
	"github.com/ksyq12/caddyman/internal/logger"
)

// retryInterval is the pause between non-blocking lock attempts.
const retryInterval = 50 * time.Millisecond

// Lock is a held lock. Release it when the operation is done.
type Lock struct {
	f    *os.File
	path string
}

// PathFor returns the lock file used for target.
func PathFor(target string) string {
	return target + ".lock"
}

// Acquire takes the exclusive lock for target, retrying until timeout
// elapses or ctx is done. A timeout of zero tries exactly once.
func Acquire(ctx context.Context, target string, timeout time.Duration) (*Lock, error) {
	path := PathFor(target)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}

	deadline := time.Now().Add(timeout)
	for attempt := 0; ; attempt++ {
		held, err := tryLock(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("lock error: %w", err)
		}
		if held {
			logger.DebugFields("Lock acquired", logger.Fields{"lock": path, "attempts": attempt + 1})
			return &Lock{f: f, path: path}, nil
		}

		if !time.Now().Before(deadline) {
			f.Close()
			return nil, errors.Wrap(errors.ErrCodeLocked, "another caddyman process is editing the Caddyfile",
				fmt.Errorf("gave up on %s after %s", path, timeout))
		}
		if attempt == 0 {
			logger.Info("Waiting for another caddyman process to release %s", path)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, errors.Wrap(errors.ErrCodeLocked, "gave up waiting for lock", ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

// Release drops the lock. The lock file itself is left in place so that
// concurrent waiters keep contending on the same inode.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
