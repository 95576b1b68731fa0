package digest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signalist/internal/model"
	"signalist/pkg/news"

	"github.com/go-playground/assert/v2"
)

type fakeUserLister struct {
	users []model.User
	err   error
}

func (f *fakeUserLister) ListForDigest(ctx context.Context) ([]model.User, error) {
	return f.users, f.err
}

type delivery struct {
	to      string
	subject string
	text    string
	html    string
}

type fakeNotifier struct {
	mu         sync.Mutex
	deliveries []delivery
	failFor    map[string]error
}

func (f *fakeNotifier) Deliver(ctx context.Context, to, subject, textBody, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.deliveries = append(f.deliveries, delivery{to: to, subject: subject, text: textBody, html: htmlBody})
	return nil
}

type fakeLocker struct {
	held     bool
	acquires int
	releases int
	err      error
}

func (f *fakeLocker) Acquire(cronKey string, ttl time.Duration) (bool, error) {
	f.acquires++
	if f.err != nil {
		return false, f.err
	}
	return !f.held, nil
}

func (f *fakeLocker) Release(cronKey string) error {
	f.releases++
	return nil
}

func threeUsers() []model.User {
	return []model.User{
		{ID: "a", Email: "a@example.com"},
		{ID: "b", Email: "b@example.com"},
		{ID: "c", Email: "c@example.com"},
	}
}

func newTestRunner(users UserLister, notifier Notifier, locker RunLocker, res *fakeResolver, fetcher *fakeFetcher, client *fakeLLM) *Runner {
	pipeline := NewPipeline(res, fetcher, NewSummarizer(client))
	return NewRunner(users, pipeline, notifier, locker, RunnerConfig{Concurrency: 2, UserTimeout: 5 * time.Second})
}

func TestRunDailyDeliversToAllUsers(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()}
	notifier := &fakeNotifier{}
	res := &fakeResolver{symbols: map[string][]string{"a": {"AAPL"}}}
	fetcher := &fakeFetcher{personalized: makeArticles(2), general: makeArticles(1)}
	client := &fakeLLM{text: "Digest body."}

	r := newTestRunner(lister, notifier, nil, res, fetcher, client)
	report, err := r.RunDaily(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, 3, len(notifier.deliveries))
}

func TestRunDailyIsolatesPanickingUser(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()}
	notifier := &fakeNotifier{}
	res := &fakeResolver{panicOn: "b"}
	fetcher := &fakeFetcher{general: makeArticles(1)}
	client := &fakeLLM{text: "Digest body."}

	r := newTestRunner(lister, notifier, nil, res, fetcher, client)
	report, err := r.RunDaily(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, 1, len(report.Failures))
	assert.Equal(t, "b@example.com", report.Failures[0].Email)
	assert.Equal(t, model.StagePipeline, report.Failures[0].Stage)
	assert.Equal(t, 2, len(notifier.deliveries))
}

func TestRunDailyEnumerationFailureIsFatal(t *testing.T) {
	lister := &fakeUserLister{err: errors.New("db unreachable")}
	notifier := &fakeNotifier{}

	r := newTestRunner(lister, notifier, nil, &fakeResolver{}, &fakeFetcher{}, &fakeLLM{})
	report, err := r.RunDaily(context.Background())

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, report.Attempted)
	assert.Equal(t, false, report.Success)
	assert.Equal(t, 0, len(notifier.deliveries))
}

func TestRunDailyEmptyUserListSucceeds(t *testing.T) {
	lister := &fakeUserLister{}
	notifier := &fakeNotifier{}

	r := newTestRunner(lister, notifier, nil, &fakeResolver{}, &fakeFetcher{}, &fakeLLM{})
	report, err := r.RunDaily(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, report.Attempted)
	assert.Equal(t, true, report.Success)
}

func TestRunDailyDeliveryFailureDoesNotShortCircuit(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()}
	notifier := &fakeNotifier{failFor: map[string]error{
		"b@example.com": errors.New("smtp rejected"),
	}}
	res := &fakeResolver{}
	fetcher := &fakeFetcher{general: makeArticles(1)}
	client := &fakeLLM{text: "Digest body."}

	r := newTestRunner(lister, notifier, nil, res, fetcher, client)
	report, err := r.RunDaily(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, model.StageDeliver, report.Failures[0].Stage)
}

func TestRunDailyLockedElsewhere(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()}
	locker := &fakeLocker{held: true}

	r := newTestRunner(lister, &fakeNotifier{}, locker, &fakeResolver{}, &fakeFetcher{}, &fakeLLM{})
	_, err := r.RunDaily(context.Background())

	assert.Equal(t, ErrRunInProgress, err)
	assert.Equal(t, 0, locker.releases)
}

func TestRunDailyReleasesLock(t *testing.T) {
	lister := &fakeUserLister{}
	locker := &fakeLocker{}

	r := newTestRunner(lister, &fakeNotifier{}, locker, &fakeResolver{}, &fakeFetcher{}, &fakeLLM{})
	_, err := r.RunDaily(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, locker.acquires)
	assert.Equal(t, 1, locker.releases)
}

func TestRunDailyLockerErrorStillRuns(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()[:1]}
	locker := &fakeLocker{err: errors.New("redis down")}
	res := &fakeResolver{}
	fetcher := &fakeFetcher{general: makeArticles(1)}
	client := &fakeLLM{text: "Digest body."}

	r := newTestRunner(lister, &fakeNotifier{}, locker, res, fetcher, client)
	report, err := r.RunDaily(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
}

// stalledFetcher blocks until the per-user context expires.
type stalledFetcher struct{}

func (f *stalledFetcher) Fetch(ctx context.Context, symbols []string, limit int) ([]news.Article, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunDailyTimesOutStalledUser(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()[:1]}
	notifier := &fakeNotifier{}
	client := &fakeLLM{text: "unused"}

	pipeline := NewPipeline(&fakeResolver{}, &stalledFetcher{}, NewSummarizer(client))
	r := NewRunner(lister, pipeline, notifier, nil, RunnerConfig{Concurrency: 1, UserTimeout: 50 * time.Millisecond})

	report, err := r.RunDaily(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, len(report.Failures))
	assert.Equal(t, model.StagePipeline, report.Failures[0].Stage)
	assert.Equal(t, 0, len(notifier.deliveries))
}

// stalledNotifier blocks until the delivery context expires.
type stalledNotifier struct{}

func (f *stalledNotifier) Deliver(ctx context.Context, to, subject, textBody, htmlBody string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunDailyStalledDeliveryIsBounded(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()[:1]}
	res := &fakeResolver{}
	fetcher := &fakeFetcher{general: makeArticles(1)}
	client := &fakeLLM{text: "Digest body."}

	pipeline := NewPipeline(res, fetcher, NewSummarizer(client))
	r := NewRunner(lister, pipeline, &stalledNotifier{}, nil, RunnerConfig{Concurrency: 1, UserTimeout: 50 * time.Millisecond})

	done := make(chan struct{})
	var report *model.RunReport
	var err error
	go func() {
		report, err = r.RunDaily(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run never finished against a stalled notifier")
	}

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, model.StageDeliver, report.Failures[0].Stage)
}

func TestRunDailyIdempotentCounts(t *testing.T) {
	lister := &fakeUserLister{users: threeUsers()}
	notifier := &fakeNotifier{}
	res := &fakeResolver{}
	fetcher := &fakeFetcher{general: makeArticles(1)}
	client := &fakeLLM{text: "Digest body."}

	r := newTestRunner(lister, notifier, nil, res, fetcher, client)

	first, err := r.RunDaily(context.Background())
	assert.Equal(t, nil, err)

	second, err := r.RunDaily(context.Background())
	assert.Equal(t, nil, err)

	assert.Equal(t, first.Attempted, second.Attempted)
	assert.Equal(t, first.Succeeded, second.Succeeded)
	assert.Equal(t, first.Failed, second.Failed)
}
