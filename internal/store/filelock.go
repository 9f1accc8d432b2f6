package store

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock guards a data directory against a second bot process. Two writers
// would silently clobber each other's whole-file rewrites.
type Lock struct {
	fl *flock.Flock
}

func AcquireLock(dir string) (*Lock, error) {
	fl := flock.New(filepath.Join(dir, "modguard.lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("data dir %s is locked by another process", dir)
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
