package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"signalist/internal/model"
	"signalist/pkg/mailer"
)

const (
	defaultConcurrency = 4
	defaultUserTimeout = 60 * time.Second

	// DailyCronKey scopes the run lock; the cron trigger and the on-demand
	// trigger share it so they can never run the same digest concurrently.
	DailyCronKey = "daily"
)

// ErrRunInProgress is returned when a run is requested while another run
// for the same cron key is still in flight.
var ErrRunInProgress = errors.New("digest run already in progress")

type UserLister interface {
	ListForDigest(ctx context.Context) ([]model.User, error)
}

type Notifier interface {
	Deliver(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// RunLocker guards a run across processes. Acquire reports false when the
// lock is already held elsewhere.
type RunLocker interface {
	Acquire(cronKey string, ttl time.Duration) (bool, error)
	Release(cronKey string) error
}

type RunnerConfig struct {
	Concurrency int
	UserTimeout time.Duration
}

// Runner drives one full digest run: enumerate users, fan the per-user
// pipeline out over a bounded worker pool, deliver each outcome, and
// aggregate a RunReport. One user's failure never blocks another's
// delivery; only enumeration failure is fatal to the run.
type Runner struct {
	users       UserLister
	pipeline    *Pipeline
	notifier    Notifier
	locker      RunLocker
	concurrency int
	userTimeout time.Duration
	running     atomic.Bool
}

func NewRunner(users UserLister, pipeline *Pipeline, notifier Notifier, locker RunLocker, cfg RunnerConfig) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.UserTimeout <= 0 {
		cfg.UserTimeout = defaultUserTimeout
	}

	return &Runner{
		users:       users,
		pipeline:    pipeline,
		notifier:    notifier,
		locker:      locker,
		concurrency: cfg.Concurrency,
		userTimeout: cfg.UserTimeout,
	}
}

// InFlight reports whether a run is currently executing in this process.
func (r *Runner) InFlight() bool {
	return r.running.Load()
}

func (r *Runner) RunDaily(ctx context.Context) (*model.RunReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.running.Store(false)

	if r.locker != nil {
		// TTL bounds the lock in case the process dies without releasing.
		acquired, err := r.locker.Acquire(DailyCronKey, 30*time.Minute)
		if err != nil {
			slog.Warn("run lock unavailable, proceeding with in-process guard only", "error", err)
		} else if !acquired {
			return nil, ErrRunInProgress
		} else {
			defer func() {
				if err := r.locker.Release(DailyCronKey); err != nil {
					slog.Warn("failed to release run lock", "error", err)
				}
			}()
		}
	}

	report := &model.RunReport{StartedAt: time.Now().UTC()}

	users, err := r.users.ListForDigest(ctx)
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		report.Success = false
		return report, fmt.Errorf("enumerate digest users: %w", err)
	}

	if len(users) == 0 {
		slog.Info("no users eligible for digest email")
		report.FinishedAt = time.Now().UTC()
		report.Success = true
		return report, nil
	}

	slog.Info("digest run started", "users", len(users), "concurrency", r.concurrency)

	jobs := make(chan model.User)
	results := make(chan *model.UserDigestOutcome)

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for user := range jobs {
				results <- r.runOne(ctx, user)
			}
		}()
	}

	go func() {
		for _, user := range users {
			jobs <- user
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// Single collector loop: the report needs no locking and the notifier
	// sees at most one in-flight send.
	date := report.StartedAt.Format("Jan 2, 2006")
	for outcome := range results {
		report.Attempted++
		r.deliver(ctx, outcome, date, report)
	}

	report.FinishedAt = time.Now().UTC()
	report.Success = true

	slog.Info("digest run finished",
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
	)

	return report, nil
}

// runOne executes one user's pipeline with its own timeout and converts a
// panic into a failed outcome so a single user cannot take down the run.
func (r *Runner) runOne(parent context.Context, user model.User) (outcome *model.UserDigestOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("user digest pipeline panicked", "user_id", user.ID, "panic", rec)
			outcome = &model.UserDigestOutcome{
				User:          user,
				FailureStage:  model.StagePipeline,
				FailureReason: fmt.Sprintf("panic: %v", rec),
			}
		}
	}()

	ctx, cancel := context.WithTimeout(parent, r.userTimeout)
	defer cancel()

	outcome = r.pipeline.Run(ctx, user)

	if ctx.Err() != nil {
		outcome.FailureStage = model.StagePipeline
		outcome.FailureReason = fmt.Sprintf("pipeline timed out: %v", ctx.Err())
	}

	return outcome
}

func (r *Runner) deliver(ctx context.Context, outcome *model.UserDigestOutcome, date string, report *model.RunReport) {
	if outcome.FailureStage == model.StagePipeline {
		report.Failed++
		report.Failures = append(report.Failures, model.UserFailure{
			Email:  outcome.User.Email,
			Stage:  outcome.FailureStage,
			Reason: outcome.FailureReason,
		})
		return
	}

	if outcome.SummaryText == "" {
		// The summarizer contract makes this unreachable; recorded rather
		// than delivering an empty digest.
		report.Failed++
		report.Failures = append(report.Failures, model.UserFailure{
			Email:  outcome.User.Email,
			Stage:  model.StageSummarize,
			Reason: "empty summary text",
		})
		return
	}

	subject := fmt.Sprintf("Market News Summary Today %s", date)
	html := mailer.RenderNewsSummary(date, outcome.SummaryText)

	// Delivery runs on the collector goroutine; a stalled SMTP server must
	// not stall the whole run, so each send gets its own deadline.
	sendCtx, cancel := context.WithTimeout(ctx, r.userTimeout)
	err := r.notifier.Deliver(sendCtx, outcome.User.Email, subject, outcome.SummaryText, html)
	cancel()

	if err != nil {
		slog.Error("digest delivery failed", "user_id", outcome.User.ID, "error", err)
		report.Failed++
		report.Failures = append(report.Failures, model.UserFailure{
			Email:  outcome.User.Email,
			Stage:  model.StageDeliver,
			Reason: err.Error(),
		})
		return
	}

	report.Succeeded++
}
