package store

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// AcquireStageLock takes an exclusive advisory lock on the data dir so two
// stages can never mutate the same store at once. TryLock is non-blocking: a
// second stage fails fast with a clear message instead of corrupting state.
func AcquireStageLock(dataDir string) (*flock.Flock, error) {
	fl := flock.New(filepath.Join(dataDir, "leadswarm.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("stage lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another stage is already running against %s", dataDir)
	}
	return fl, nil
}
