package model

import (
	"time"

	"signalist/pkg/news"
)

// FailureStage marks the first pipeline stage that degraded or failed for a
// user. StagePipeline covers the defensive case where the whole per-user
// execution panicked or timed out before producing an outcome.
type FailureStage string

const (
	StageNone      FailureStage = "none"
	StageResolve   FailureStage = "resolve"
	StageFetch     FailureStage = "fetch"
	StageSummarize FailureStage = "summarize"
	StageDeliver   FailureStage = "deliver"
	StagePipeline  FailureStage = "pipeline"
)

// UserDigestOutcome is the ephemeral result of one pipeline run for one user.
type UserDigestOutcome struct {
	User            User
	ResolvedSymbols []string
	Articles        []news.Article
	SummaryText     string
	FailureStage    FailureStage
	FailureReason   string
}

// Degraded reports whether any stage fell back to defaults for this user.
func (o *UserDigestOutcome) Degraded() bool {
	return o.FailureStage != StageNone
}

type UserFailure struct {
	Email  string       `json:"email"`
	Stage  FailureStage `json:"stage"`
	Reason string       `json:"reason"`
}

// RunReport aggregates all per-user outcomes of one run. It lives only in
// memory and in the latest-report cache; nothing in it is retried.
type RunReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Attempted  int           `json:"attempted"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Success    bool          `json:"success"`
	Failures   []UserFailure `json:"failures,omitempty"`
}
