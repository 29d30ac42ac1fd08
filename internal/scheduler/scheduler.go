package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one periodic maintenance task.
type Job struct {
	Name string
	Run  func() error
}

// Scheduler periodically runs maintenance jobs such as the session sweep.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler running jobs every interval.
func New(interval time.Duration, jobs ...Job) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		jobs:      jobs,
		interval:  interval,
		log:       slog.Default().With("component", "scheduler"),
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 || s.interval <= 0 {
		s.log.Info("scheduler: nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runAll)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runAll() {
	for _, job := range s.jobs {
		t0 := time.Now()
		if err := job.Run(); err != nil {
			s.log.Error("scheduler: job failed", "job", job.Name, "error", err)
			continue
		}
		s.log.Debug("scheduler: job completed", "job", job.Name, "duration_ms", time.Since(t0).Milliseconds())
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
