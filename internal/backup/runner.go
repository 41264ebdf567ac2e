package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"netbackup/internal/apperrors"
	"netbackup/internal/config"
	"netbackup/internal/controller"
	"netbackup/internal/observability"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
)

// Controller is the controller API a run needs.
type Controller interface {
	Prober
	Fetcher
	Login(ctx context.Context, creds controller.Credentials) (controller.Session, error)
	TriggerBackup(ctx context.Context, session controller.Session) error
	ArtifactURL() string
}

// RunContext is the per-run input. It is built once at the start of a run;
// the session is filled in by deriving a new value after login.
type RunContext struct {
	ID             string
	Trigger        Trigger
	BaseURL        string
	Username       string
	Password       string
	ClientIdentity string
	Session        controller.Session
}

// credentials returns the login inputs. The client identity is only sent on
// scheduled runs.
func (rc RunContext) credentials() controller.Credentials {
	creds := controller.Credentials{Username: rc.Username, Password: rc.Password}
	if rc.Trigger == TriggerScheduled {
		creds.UserAgent = rc.ClientIdentity
	}
	return creds
}

func (rc RunContext) withSession(s controller.Session) RunContext {
	rc.Session = s
	return rc
}

// RunnerConfig holds dependencies for a Runner.
type RunnerConfig struct {
	Backup     *config.BackupConfig
	Controller Controller
	Store      Store
	Clock      clock.Clock            // default: wall clock
	Location   *time.Location         // zone for artifact keys, default: time.Local
	Metrics    *observability.Metrics // optional
}

// Runner executes backup runs. It is safe for concurrent use, but
// overlapping runs are not coordinated with each other.
type Runner struct {
	cfg      *config.BackupConfig
	ctrl     Controller
	poller   *Poller
	transfer *Transfer
	clock    clock.Clock
	location *time.Location
	metrics  *observability.Metrics

	last atomic.Pointer[Outcome]
}

// NewRunner creates a runner. The backup configuration is validated on
// every run, not here.
func NewRunner(cfg RunnerConfig) *Runner {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Runner{
		cfg:      cfg.Backup,
		ctrl:     cfg.Controller,
		poller:   NewPoller(cfg.Controller, clk, cfg.Metrics),
		transfer: NewTransfer(cfg.Controller, cfg.Store, clk, cfg.Metrics),
		clock:    clk,
		location: loc,
		metrics:  cfg.Metrics,
	}
}

// Last returns the most recent finished outcome, or nil.
func (r *Runner) Last() *Outcome {
	return r.last.Load()
}

// Run executes one backup run and always returns an outcome.
func (r *Runner) Run(ctx context.Context, trigger Trigger) *Outcome {
	out := &Outcome{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		Stage:     StageInit,
		StartedAt: r.clock.Now(),
	}
	logger := slog.With("runId", out.RunID, "trigger", trigger)
	ctx = withLogger(ctx, logger)

	if r.metrics != nil {
		r.metrics.RecordRunStarted(ctx, string(trigger))
	}

	r.execute(ctx, out)

	out.FinishedAt = r.clock.Now()
	if out.Message == "" && out.Err != nil {
		out.Message = out.Err.Error()
	}

	if r.metrics != nil {
		duration := out.FinishedAt.Sub(out.StartedAt).Seconds()
		r.metrics.RecordRunCompleted(ctx, string(trigger), string(out.Result), out.Succeeded(), duration)
	}
	if out.Succeeded() {
		logger.Info("Backup run completed", "key", out.Key, "bytes", out.Bytes)
	} else {
		logger.Error("Backup run failed", "result", out.Result, "stage", out.Stage, "error", out.Err)
	}

	r.last.Store(out)
	return out
}

func (r *Runner) execute(ctx context.Context, out *Outcome) {
	logger := loggerFrom(ctx)

	if err := r.cfg.Validate(); err != nil {
		logger.Error("Environment variables are not properly set", "error", err)
		r.fail(out, ResultConfigurationError, err)
		out.Message = "Server configuration error: " + err.Error()
		return
	}

	rc := RunContext{
		ID:             out.RunID,
		Trigger:        out.Trigger,
		BaseURL:        r.cfg.BaseURL,
		Username:       r.cfg.Username,
		Password:       r.cfg.Password,
		ClientIdentity: r.cfg.ClientIdentity,
	}
	policy := Policy{
		PollAttempts:     r.cfg.PollAttempts,
		PollDelay:        r.cfg.PollDelay,
		TransferAttempts: r.cfg.TransferAttempts,
		TransferDelay:    r.cfg.TransferDelay,
	}

	out.Stage = StageAuthenticating
	session, err := r.ctrl.Login(ctx, rc.credentials())
	if err != nil {
		r.fail(out, classify(err, apperrors.ErrAuthentication, ResultAuthenticationFailure), err)
		return
	}
	rc = rc.withSession(session)
	logger.Info("Logged in to controller", "baseUrl", rc.BaseURL)

	out.Stage = StageTriggering
	if err := r.ctrl.TriggerBackup(ctx, rc.Session); err != nil {
		r.fail(out, classify(err, apperrors.ErrTrigger, ResultTriggerFailure), err)
		return
	}

	out.Stage = StagePolling
	target := r.ctrl.ArtifactURL()
	if err := r.poller.AwaitReady(ctx, target, rc.Session, policy.PollAttempts, policy.PollDelay); err != nil {
		r.fail(out, classify(err, apperrors.ErrNotReady, ResultReadinessFailure), err)
		return
	}

	out.Stage = StageTransferring
	key := ArtifactKey(r.cfg.KeyPrefix, r.clock.Now().In(r.location), r.cfg.Version+".unf")
	stored, err := r.transfer.FetchAndStore(ctx, target, key, rc.Session, policy.TransferAttempts, policy.TransferDelay)
	if err != nil {
		out.Key = key
		r.fail(out, classify(err, apperrors.ErrTransferExhausted, ResultTransferFailure), err)
		return
	}

	out.Stage = StageDone
	out.Result = ResultSuccess
	out.Key = stored.Key
	out.Bytes = stored.Bytes
	out.Message = fmt.Sprintf("Put %s successfully! File size: %d bytes", stored.Key, stored.Bytes)
}

func (r *Runner) fail(out *Outcome, result Result, err error) {
	out.Result = result
	out.Err = err
}

// classify returns expected when err carries the stage's sentinel and
// ResultUnexpectedError otherwise.
func classify(err, sentinel error, expected Result) Result {
	if errors.Is(err, sentinel) {
		return expected
	}
	return ResultUnexpectedError
}
