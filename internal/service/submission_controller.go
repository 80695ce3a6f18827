package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/models"
	"github.com/noah-isme/aula-planner/internal/solver"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
	"github.com/noah-isme/aula-planner/pkg/jobs"
	"github.com/noah-isme/aula-planner/pkg/middleware/requestid"
)

// Control labels and progress messages shown while a submission runs.
const (
	SolveLabel        = "Solve"
	SolvingLabel      = "Solving..."
	CollectingMessage = "Collecting data and sending to the solver..."
	ProcessingMessage = "Processing... the solver service is computing the solution."
)

var allowedTransitions = map[models.SubmissionState][]models.SubmissionState{
	models.SubmissionIdle:             {models.SubmissionCollecting},
	models.SubmissionCollecting:       {models.SubmissionValidating},
	models.SubmissionValidating:       {models.SubmissionValidationFailed, models.SubmissionSubmitting},
	models.SubmissionValidationFailed: {models.SubmissionIdle},
	models.SubmissionSubmitting:       {models.SubmissionSuccess, models.SubmissionFailure},
	models.SubmissionSuccess:          {models.SubmissionIdle},
	models.SubmissionFailure:          {models.SubmissionIdle},
}

type solverClient interface {
	Solve(ctx context.Context, req models.SolveRequest) (*models.SolveResponse, error)
}

// TaskRunner schedules the outbound solver call. *jobs.Queue and jobs.Inline satisfy it.
type TaskRunner interface {
	Go(name string, task jobs.Task) error
}

type resultArchiver interface {
	Archive(ctx context.Context, sessionID string, req models.SolveRequest, resp models.SolveResponse) (string, error)
	Forget(ctx context.Context, id string) error
}

// SubmissionDeps are the collaborators shared by every session's controller.
type SubmissionDeps struct {
	Builder  *RequestBuilder
	Solver   solverClient
	Runner   TaskRunner
	Archive  resultArchiver
	Metrics  *MetricsService
	Logger   *zap.Logger
	Observer func(from, to models.SubmissionState)
}

// SubmissionController owns at most one in-flight solve request per form session.
type SubmissionController struct {
	sessionID string
	builder   *RequestBuilder
	renderer  ResultRenderer
	solver    solverClient
	runner    TaskRunner
	archive   resultArchiver
	metrics   *MetricsService
	logger    *zap.Logger
	observer  func(from, to models.SubmissionState)

	mu       sync.Mutex
	state    models.SubmissionState
	outcome  models.SubmissionState
	attempts int
	resultID string
	control  models.SubmitControl
	display  models.ResultDisplay
}

// NewSubmissionController constructs an idle controller for one session.
func NewSubmissionController(sessionID string, deps SubmissionDeps) *SubmissionController {
	if deps.Builder == nil {
		deps.Builder = NewRequestBuilder(nil)
	}
	if deps.Runner == nil {
		deps.Runner = jobs.Inline{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SubmissionController{
		sessionID: sessionID,
		builder:   deps.Builder,
		solver:    deps.Solver,
		runner:    deps.Runner,
		archive:   deps.Archive,
		metrics:   deps.Metrics,
		logger:    deps.Logger.With(zap.String("session_id", sessionID)),
		observer:  deps.Observer,
		state:     models.SubmissionIdle,
		control:   idleControl(),
		display:   models.ResultDisplay{Variant: models.DisplayNeutral},
	}
}

func idleControl() models.SubmitControl {
	return models.SubmitControl{Enabled: true, Label: SolveLabel}
}

// Snapshot returns a consistent copy of the observable state.
func (c *SubmissionController) Snapshot() models.SubmissionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.SubmissionSnapshot{
		State:    c.state,
		Outcome:  c.outcome,
		Attempts: c.attempts,
		Control:  c.control,
		Display:  c.display,
	}
}

// Busy reports whether a submission holds the control.
func (c *SubmissionController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.control.Enabled
}

// Submit runs one attempt. Validation happens synchronously; a validation failure is
// returned as ErrIncompleteForm and never reaches the network. Otherwise the solver
// call is handed to the runner and Submit returns nil: the outcome shows up in Snapshot.
// The caller must keep src stable for the duration of the call.
func (c *SubmissionController) Submit(ctx context.Context, src RowSource) error {
	c.mu.Lock()
	if !c.control.Enabled {
		c.mu.Unlock()
		return appErrors.Clone(appErrors.ErrSubmissionInFlight, "")
	}
	c.attempts++
	c.outcome = ""
	c.control = models.SubmitControl{Enabled: false, Busy: true, Label: SolvingLabel}
	c.transition(models.SubmissionCollecting)
	c.display = models.ResultDisplay{Variant: models.DisplayNeutral, Text: CollectingMessage}

	c.transition(models.SubmissionValidating)
	req, err := c.builder.Build(src)
	if err != nil {
		msg := appErrors.MsgIncompleteForm
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		c.transition(models.SubmissionValidationFailed)
		c.outcome = models.SubmissionValidationFailed
		c.display = models.ResultDisplay{Variant: models.DisplayError, Message: msg, Text: c.renderer.ValidationError(msg)}
		c.releaseLocked()
		c.mu.Unlock()
		c.metrics.RecordSubmission(string(models.SubmissionValidationFailed))
		c.logger.Info("submission blocked by validation")
		return err
	}

	c.transition(models.SubmissionSubmitting)
	c.display = models.ResultDisplay{Variant: models.DisplayNeutral, Text: ProcessingMessage}
	c.mu.Unlock()

	reqID := requestid.FromContext(ctx)
	task := func(taskCtx context.Context) {
		if reqID != "" {
			taskCtx = requestid.WithValue(taskCtx, reqID)
		}
		c.send(taskCtx, req)
	}
	if err := c.runner.Go("solve:"+c.sessionID, task); err != nil {
		c.logger.Error("failed to schedule solver call", zap.Error(err))
		c.finishFailure(&solver.TransportError{Err: fmt.Errorf("schedule solver call: %w", err)})
		c.release()
	}
	return nil
}

// send performs the outbound call. The deferred release re-enables the control on
// every path, including a panic while interpreting the response.
func (c *SubmissionController) send(ctx context.Context, req models.SolveRequest) {
	defer c.release()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("solver response handling panicked", zap.Any("panic", r))
			c.finishFailure(&solver.TransportError{Err: fmt.Errorf("unexpected error: %v", r)})
		}
	}()

	if c.solver == nil {
		c.finishFailure(&solver.TransportError{Err: errors.New("no solver client configured")})
		return
	}
	resp, err := c.solver.Solve(ctx, req)
	if err != nil {
		c.finishFailure(err)
		return
	}
	if resp == nil {
		c.finishFailure(&solver.TransportError{Err: errors.New("empty solver response")})
		return
	}

	text := c.renderer.Success(*resp)
	resultID := c.archiveResult(ctx, req, *resp)

	c.mu.Lock()
	c.transition(models.SubmissionSuccess)
	c.outcome = models.SubmissionSuccess
	c.display = models.ResultDisplay{Variant: models.DisplaySuccess, Text: text, ResultID: resultID}
	c.mu.Unlock()
	c.metrics.RecordSubmission(string(models.SubmissionSuccess))
}

func (c *SubmissionController) archiveResult(ctx context.Context, req models.SolveRequest, resp models.SolveResponse) string {
	if c.archive == nil {
		return ""
	}
	id, err := c.archive.Archive(ctx, c.sessionID, req, resp)
	if err != nil {
		c.logger.Warn("result not archived", zap.Error(err))
		return ""
	}
	c.mu.Lock()
	previous := c.resultID
	c.resultID = id
	c.mu.Unlock()
	if previous != "" {
		if err := c.archive.Forget(ctx, previous); err != nil {
			c.logger.Warn("failed to drop previous result", zap.String("result_id", previous), zap.Error(err))
		}
	}
	return id
}

// LastResultID returns the id of the most recently archived result, if any.
func (c *SubmissionController) LastResultID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resultID
}

func (c *SubmissionController) finishFailure(err error) {
	var display models.ResultDisplay
	var svcErr *solver.ServiceError
	if errors.As(err, &svcErr) {
		display = models.ResultDisplay{Variant: models.DisplayError, Message: svcErr.Message, Text: c.renderer.ServiceError(svcErr.Message)}
	} else {
		display = models.ResultDisplay{Variant: models.DisplayError, Message: err.Error(), Text: c.renderer.TransportError(err)}
	}

	c.mu.Lock()
	if c.state != models.SubmissionSubmitting {
		c.mu.Unlock()
		return
	}
	c.transition(models.SubmissionFailure)
	c.outcome = models.SubmissionFailure
	c.display = display
	c.mu.Unlock()
	c.metrics.RecordSubmission(string(models.SubmissionFailure))
}

func (c *SubmissionController) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == models.SubmissionSubmitting {
		// Reached only if the task exited without recording an outcome.
		c.transition(models.SubmissionFailure)
		c.outcome = models.SubmissionFailure
		c.display = models.ResultDisplay{Variant: models.DisplayError, Text: c.renderer.TransportError(nil)}
	}
	c.releaseLocked()
}

func (c *SubmissionController) releaseLocked() {
	if c.state.Terminal() {
		c.transition(models.SubmissionIdle)
	}
	c.control = idleControl()
}

func (c *SubmissionController) transition(to models.SubmissionState) {
	from := c.state
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			c.state = to
			if c.observer != nil {
				c.observer(from, to)
			}
			return
		}
	}
	c.logger.Error("illegal submission transition", zap.String("from", string(from)), zap.String("to", string(to)))
}
