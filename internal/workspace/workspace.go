// Package workspace manages shotsync's output folders: one timestamped
// directory per ingest run holding the processed CSV and exported clips.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// RunStampLayout formats the run directory and processed CSV timestamps.
const RunStampLayout = "20060102_150405"

const lockFileName = ".shotsync.lock"

// ErrNoCSV is returned when a push-only folder holds no CSV.
var ErrNoCSV = errors.New("no .csv files found")

// ErrLocked is returned when another ingest holds the directory lock.
var ErrLocked = errors.New("another shotsync ingest is using this folder")

// NewRunDir creates <root>/<YYYYmmdd_HHMMSS> for now and returns its path.
func NewRunDir(root string, now time.Time) (string, error) {
	dir := filepath.Join(root, now.Format(RunStampLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}
	return dir, nil
}

// LatestCSV returns the most recently modified .csv file directly in dir.
func LatestCSV(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("push-only folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("push-only folder %s is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}

	var (
		newest     string
		newestTime time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		fi, err := entry.Info()
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if newest == "" || fi.ModTime().After(newestTime) {
			newest = filepath.Join(dir, entry.Name())
			newestTime = fi.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoCSV, dir)
	}
	return newest, nil
}

// Artifacts lists files in dir with the given extension, sorted by name.
func Artifacts(dir, ext string) ([]string, error) {
	ext = "." + strings.TrimPrefix(strings.ToLower(ext), ".")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ext {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(out)
	return out, nil
}

// Lock is an advisory lock on one output folder.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the folder lock without blocking.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(filepath.Join(dir, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &Lock{fl: fl}, nil
}

// Path is the lock file location.
func (l *Lock) Path() string { return l.fl.Path() }

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if err := os.Remove(l.fl.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
