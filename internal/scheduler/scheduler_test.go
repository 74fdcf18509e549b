package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("pass", "every five minutes", filepath.Join(t.TempDir(), "pass.lock"), nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRunOnceSharesInFlightPass(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{})
	s, err := New("pass", "0 */5 * * * *", filepath.Join(t.TempDir(), "pass.lock"), func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.RunOnce(context.Background())
	}()
	<-entered

	if !s.Status().Running {
		t.Fatalf("status not running during pass")
	}
	if s.Trigger() {
		t.Fatalf("trigger started a second pass")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.RunOnce(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("task ran %d times, want 1", n)
	}
	st := s.Status()
	if st.Running || st.Runs != 1 || st.LastOkAt.IsZero() {
		t.Fatalf("status = %+v", st)
	}
}

func TestRunOnceRecordsError(t *testing.T) {
	boom := errors.New("discovery failed")
	s, err := New("pass", "0 */5 * * * *", filepath.Join(t.TempDir(), "pass.lock"), func(context.Context) error { return boom })
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if s.Status().LastError != boom.Error() {
		t.Fatalf("status = %+v", s.Status())
	}
}

func TestRunOnceRespectsProcessLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "pass.lock")
	other := flock.New(lockPath)
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer other.Unlock()

	ran := false
	s, err := New("pass", "0 */5 * * * *", lockPath, func(context.Context) error { ran = true; return nil })
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunOnce(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if ran {
		t.Fatalf("task ran without the lock")
	}
}
