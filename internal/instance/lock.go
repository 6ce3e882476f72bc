// pattern: Imperative Shell
package instance

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "codeprojects.lock"
	portFileName = "codeprojects.port"
)

// Lock acquires an exclusive file lock so only one `serve` runs per data
// directory. Returns the flock handle (caller must defer Cleanup) or an
// error if another instance already holds the lock.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another codeprojects instance is already running")
	}
	return fl, nil
}

// WritePort writes the web server's listener address to the port file.
func WritePort(dataDir, addr string) error {
	return os.WriteFile(filepath.Join(dataDir, portFileName), []byte(addr), 0600)
}

// Cleanup removes the port file and releases the file lock.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dataDir, portFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}

// RemoveStale deletes the port file left behind by an instance that exited
// without cleaning up. It refuses while another process holds the lock.
// Reports whether a stale file was removed.
func RemoveStale(dataDir string) (bool, error) {
	fl, err := Lock(dataDir)
	if err != nil {
		return false, err
	}
	defer func() { _ = fl.Unlock() }()

	err = os.Remove(filepath.Join(dataDir, portFileName))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove port file: %w", err)
	}
	return true, nil
}
