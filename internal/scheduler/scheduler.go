// Package scheduler wires the periodic runs onto cron.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one named periodic task
type Job struct {
	Name string
	Spec string // cron expression
	Run  func(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedules
type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger

	mu      sync.Mutex
	running bool
}

// New creates a scheduler
func New(log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log,
	}
}

// Add registers a job. Jobs added with an empty spec are skipped, so
// disabling a schedule is just leaving it out of the config.
func (s *Scheduler) Add(ctx context.Context, job Job) error {
	if job.Spec == "" {
		s.log.WithField("job", job.Name).Info("Job has no schedule, skipping")
		return nil
	}

	_, err := s.cron.AddFunc(job.Spec, func() {
		s.log.WithField("job", job.Name).Info("Job starting")
		if err := job.Run(ctx); err != nil {
			s.log.WithField("job", job.Name).Errorf("Job failed: %v", err)
			return
		}
		s.log.WithField("job", job.Name).Info("Job finished")
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"job":  job.Name,
		"spec": job.Spec,
	}).Info("Job scheduled")
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}
