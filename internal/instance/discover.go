// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const healthTimeout = 2 * time.Second

// ErrNotRunning is returned by Discover when no instance holds the lock.
var ErrNotRunning = errors.New("no running codeprojects instance found")

// Discover checks whether a running `serve` instance exists and returns its
// base URL (e.g. "http://127.0.0.1:12345"). Returns an error if no instance
// is running, the port file is missing, or the health check fails.
func Discover(dataDir string) (string, error) {
	// If we can take the lock, nobody else holds it.
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotRunning
		}
		return "", fmt.Errorf("failed to check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return "", ErrNotRunning
	}

	data, err := os.ReadFile(filepath.Join(dataDir, portFileName))
	if err != nil {
		return "", fmt.Errorf("codeprojects instance detected but port file missing (try 'codeprojects cleanup'): %w", err)
	}

	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("codeprojects port file is empty (try 'codeprojects cleanup')")
	}

	baseURL := fmt.Sprintf("http://%s", addr)

	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return "", fmt.Errorf("codeprojects instance not responding (try 'codeprojects cleanup'): %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("codeprojects health check failed (status %d)", resp.StatusCode)
	}

	return baseURL, nil
}
