package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/gofrs/flock"
)

// FileLedger keeps ids as a JSON array on disk. A sibling .lock file
// serialises writers across processes.
type FileLedger struct {
	path string
	lock *flock.Flock
}

func NewFile(path string) *FileLedger {
	return &FileLedger{path: path, lock: flock.New(path + ".lock")}
}

func (f *FileLedger) Has(ctx context.Context, id string) bool {
	ids, err := f.read()
	if err != nil {
		log.Printf("[ledger] read %s failed, treating %s as new: %v", f.path, id, err)
		return false
	}
	return slices.Contains(ids, id)
}

func (f *FileLedger) Record(ctx context.Context, id string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("ledger: mkdir: %w", err)
	}
	locked, err := f.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("ledger: lock: %w", err)
	}
	if !locked {
		return errors.New("ledger: lock not acquired")
	}
	defer func() { _ = f.lock.Unlock() }()

	ids, err := f.read()
	if err != nil {
		// keep the unreadable file for inspection rather than silently dropping it
		aside := fmt.Sprintf("%s.corrupt-%d", f.path, time.Now().Unix())
		log.Printf("[ledger] %s unreadable (%v), moving to %s", f.path, err, aside)
		if rerr := os.Rename(f.path, aside); rerr != nil {
			return fmt.Errorf("ledger: set aside corrupt file: %w", rerr)
		}
		ids = nil
	}
	if slices.Contains(ids, id) {
		return nil
	}
	ids = append(ids, id)
	return f.write(ids)
}

func (f *FileLedger) List(ctx context.Context) ([]string, error) {
	return f.read()
}

func (f *FileLedger) Close() error { return nil }

// read returns (nil, nil) when the ledger file does not exist yet.
func (f *FileLedger) read() ([]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (f *FileLedger) write(ids []string) error {
	b, err := json.MarshalIndent(ids, "", "    ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	fh, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: write tmp: %w", err)
	}
	if _, err := fh.Write(b); err != nil {
		_ = fh.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger: write tmp: %w", err)
	}
	if err := fh.Sync(); err != nil {
		_ = fh.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger: fsync: %w", err)
	}
	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ledger: rename: %w", err)
	}
	if err := syncDir(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("ledger: fsync dir: %w", err)
	}
	return nil
}

// syncDir flushes the directory entry so the rename survives a crash.
// Windows cannot fsync a directory handle.
var syncDir = func(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
