// Package scheduler runs passes on a cron schedule and on demand. At most
// one pass runs at a time, in this process and across processes sharing the
// data dir.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"autoapply-engine/internal/config"
)

// ErrLocked means another process holds the pass lock.
var ErrLocked = errors.New("scheduler: another process is running a pass")

type Task func(ctx context.Context) error

type Status struct {
	Running   bool      `json:"running"`
	LastRunAt time.Time `json:"lastRunAt,omitempty"`
	LastOkAt  time.Time `json:"lastOkAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Runs      int       `json:"runs"`
	Next      time.Time `json:"next,omitempty"`
}

type Scheduler struct {
	name string
	task Task
	lock *flock.Flock
	cron *cron.Cron
	sf   singleflight.Group

	mu     sync.Mutex
	status Status
	entry  cron.EntryID
	ctx    context.Context
}

// New parses spec (six fields, seconds first) and prepares the lock file.
func New(name, spec, lockPath string, task Task) (*Scheduler, error) {
	s := &Scheduler{
		name: name,
		task: task,
		lock: flock.New(lockPath),
		ctx:  context.Background(),
	}
	s.cron = cron.New(
		cron.WithParser(config.CronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))),
	)
	id, err := s.cron.AddFunc(spec, func() {
		if err := s.RunOnce(s.runCtx()); err != nil {
			log.Printf("[%s] error: %v", s.name, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Start begins ticking until ctx is done. runNow also starts a pass immediately.
func (s *Scheduler) Start(ctx context.Context, runNow bool) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	log.Printf("[%s] scheduled, next run %s", s.name, s.cron.Entry(s.entry).Next.Format(time.RFC3339))

	if runNow {
		s.Trigger()
	}
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

// Trigger starts a pass in the background unless one is already running.
func (s *Scheduler) Trigger() (started bool) {
	if s.Status().Running {
		return false
	}
	go func() {
		if err := s.RunOnce(s.runCtx()); err != nil {
			log.Printf("[%s] error: %v", s.name, err)
		}
	}()
	return true
}

// RunOnce runs the task now. Callers arriving while a pass is in flight
// share its result instead of starting another.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	_, err, shared := s.sf.Do(s.name, func() (any, error) {
		return nil, s.run(ctx)
	})
	if shared {
		log.Printf("[%s] joined in-flight pass", s.name)
	}
	return err
}

func (s *Scheduler) run(ctx context.Context) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("pass lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = s.lock.Unlock() }()

	s.mu.Lock()
	s.status.Running = true
	s.status.LastRunAt = time.Now()
	s.mu.Unlock()

	err = s.task(ctx)

	s.mu.Lock()
	s.status.Running = false
	s.status.Runs++
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
		s.status.LastOkAt = time.Now()
	}
	s.mu.Unlock()
	return err
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()
	if s.cron != nil {
		st.Next = s.cron.Entry(s.entry).Next
	}
	return st
}

func (s *Scheduler) runCtx() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}
