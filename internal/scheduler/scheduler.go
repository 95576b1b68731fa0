package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner around a single daily job. The job runs in
// the configured timezone so the send hour tracks local market time rather
// than the host clock.
type Scheduler struct {
	cron *cron.Cron
	spec string
	job  func()
}

func New(spec, timezone string, job func()) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		spec: spec,
		job:  job,
	}, nil
}

func (s *Scheduler) Start() error {
	entryID, err := s.cron.AddFunc(s.spec, s.job)
	if err != nil {
		return fmt.Errorf("add cron entry %q: %w", s.spec, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "cron", s.spec, "next_run", s.cron.Entry(entryID).Next)
	return nil
}

// Stop halts scheduling and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}
