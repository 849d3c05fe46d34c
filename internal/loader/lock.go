package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
)

// lockRetryDelay is how often a blocked Lock retries.
const lockRetryDelay = 50 * time.Millisecond

// DirLock serializes writers of a dictionary directory across processes.
// The lock file is <dir>/.docsyn.lock.
type DirLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewDirLock creates a lock for dir.
func NewDirLock(dir string) *DirLock {
	lockPath := filepath.Join(dir, ".docsyn.lock")
	return &DirLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires the lock, creating dir if needed. It waits until ctx is
// done and then fails with ERR_204_SOURCE_LOCKED.
func (l *DirLock) Lock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return derrors.New(derrors.ErrCodeSourceLocked,
			"dictionary directory is locked by another process", ctx.Err()).
			WithDetail("lock", l.path).
			WithSuggestion("Retry once the other import has finished")
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Unlocking an unlocked DirLock is a no-op.
func (l *DirLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *DirLock) Path() string {
	return l.path
}
