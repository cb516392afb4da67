package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dl-alexandre/gdsync/internal/utils"
	"github.com/gofrs/flock"
)

// RunLock is held for the duration of one run of a profile
type RunLock struct {
	flock *flock.Flock
}

// Lock takes the run lock for the profile called name. It fails with
// PROFILE_LOCKED when another process holds it.
func (s *Store) Lock(name string) (*RunLock, error) {
	lockDir := filepath.Join(s.dir, ".locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", lockDir, err)
	}

	fl := flock.New(filepath.Join(lockDir, unsafeChars.ReplaceAllString(name, "_")+".lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock profile %s: %w", name, err)
	}
	if !locked {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeProfileLocked,
			fmt.Sprintf("Profile %s is already being synced by another process", name)).
			WithContext("lockFile", fl.Path()).
			Build())
	}
	return &RunLock{flock: fl}, nil
}

// Unlock releases the lock. The lock file stays in place: removing it would
// let a waiter lock the unlinked inode while a later run locks a new file.
func (l *RunLock) Unlock() error {
	if l == nil || !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock profile: %w", err)
	}
	return nil
}
