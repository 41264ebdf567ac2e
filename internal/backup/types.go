package backup

import (
	"net/http"
	"netbackup/internal/apperrors"
	"time"
)

// Trigger identifies what started a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerOnDemand  Trigger = "on-demand"
)

// Stage is a step of the run state machine.
type Stage string

const (
	StageInit           Stage = "init"
	StageAuthenticating Stage = "authenticating"
	StageTriggering     Stage = "triggering"
	StagePolling        Stage = "polling"
	StageTransferring   Stage = "transferring"
	StageDone           Stage = "done"
)

// Result classifies how a run ended.
type Result string

const (
	ResultSuccess               Result = "success"
	ResultConfigurationError    Result = "configuration-error"
	ResultAuthenticationFailure Result = "authentication-failure"
	ResultTriggerFailure        Result = "trigger-failure"
	ResultReadinessFailure      Result = "readiness-failure"
	ResultTransferFailure       Result = "transfer-failure"
	ResultUnexpectedError       Result = "unexpected-error"
)

// Outcome is the terminal report of one run.
type Outcome struct {
	RunID      string    `json:"runId"`
	Trigger    Trigger   `json:"trigger"`
	Result     Result    `json:"result"`
	Stage      Stage     `json:"stage"` // Last stage entered
	Key        string    `json:"key,omitempty"`
	Bytes      int64     `json:"bytes,omitempty"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	Err error `json:"-"`
}

// Succeeded reports whether the run stored a backup file.
func (o *Outcome) Succeeded() bool {
	return o.Result == ResultSuccess
}

// HTTPStatus maps the outcome to a response status for on-demand runs.
func (o *Outcome) HTTPStatus() int {
	if o.Succeeded() {
		return http.StatusOK
	}
	return apperrors.HTTPStatus(o.Err)
}

// Policy holds the attempt budgets of the polling and transfer stages.
type Policy struct {
	PollAttempts     int
	PollDelay        time.Duration
	TransferAttempts int
	TransferDelay    time.Duration
}
