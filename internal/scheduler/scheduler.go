package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Refresher rebuilds the dataset file at path and reports the rows written.
type Refresher interface {
	Refresh(ctx context.Context, path string) (int, error)
}

// Scheduler runs the CSV refresh on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Path      string
	Ctx       context.Context

	mu      sync.Mutex
	running bool
	runs    int
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r Refresher, path string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Path:      path,
		Ctx:       ctx,
	}
}

// Register adds the refresh task under a six-field cron spec
// ("0 30 18 * * 1-5") or a descriptor such as "@every 1h".
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh immediately, e.g. once at startup.
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

// Runs returns how many refreshes have completed successfully.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) refreshTask() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[WARN] refresh still running, skipping this tick")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Printf("[INFO] running refresh task for %s", s.Path)
	if _, err := s.Refresher.Refresh(s.Ctx, s.Path); err != nil {
		log.Printf("[ERROR] refresh %s: %v", s.Path, err)
		return
	}
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
}
