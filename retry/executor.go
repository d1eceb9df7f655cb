package retry

import (
	"context"
	"time"

	"github.com/jonwraymond/relay/observe"
	"github.com/jonwraymond/relay/pipeline"
)

// State identifies where an execution stands in the retry state machine.
type State int

const (
	// StateIdle means no attempt has started yet.
	StateIdle State = iota
	// StateAttempting means an attempt is in flight.
	StateAttempting
	// StateSucceeded means an attempt returned a successful outcome.
	StateSucceeded
	// StateFailedTerminal means a failed result was returned without
	// further retries.
	StateFailedTerminal
	// StateFaultedTerminal means a fault propagated without further
	// retries.
	StateFaultedTerminal
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateFailedTerminal:
		return "failed"
	case StateFaultedTerminal:
		return "faulted"
	default:
		return "unknown"
	}
}

// Event causes reported on retry events.
const (
	// CauseFault marks a retry triggered by a propagated error.
	CauseFault = "fault"
	// CauseFailure marks a retry triggered by a failed result.
	CauseFailure = "failure"
)

// Operation is one retryable unit of work. A completed operation returns an
// Outcome and a nil error; a fault returns a non-nil error and no Outcome.
type Operation func(ctx context.Context) (pipeline.Outcome, error)

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// Logger records terminal attempt summaries. Nil disables logging.
	Logger observe.Logger

	// Sink receives retry attempt and exhaustion events. Nil discards
	// them.
	Sink observe.Sink

	// OnTransition observes state machine transitions. Calls are
	// synchronous on the executing goroutine and may interleave across
	// concurrent executions.
	OnTransition func(from, to State)
}

// Executor reruns an operation according to a Policy.
//
// Classification is strict: a fault is never converted into a failed result
// and a failed result is never converted into a fault. Retrying is the only
// way either is suppressed, and only while attempts remain.
type Executor struct {
	policy       Policy
	backoff      *Backoff
	logger       observe.Logger
	sink         observe.Sink
	onTransition func(from, to State)
}

// NewExecutor creates an executor for policy.
func NewExecutor(policy Policy, cfg ExecutorConfig) *Executor {
	policy = policy.withDefaults()
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Sink == nil {
		cfg.Sink = observe.NopSink{}
	}
	return &Executor{
		policy:       policy,
		backoff:      NewBackoff(policy),
		logger:       cfg.Logger,
		sink:         cfg.Sink,
		onTransition: cfg.OnTransition,
	}
}

// Policy returns the executor's effective policy, defaults applied.
func (e *Executor) Policy() Policy {
	return e.policy
}

// Execute runs op until it succeeds, the policy stops the retry, or the
// attempt budget runs out. scope labels emitted events, typically with the
// request type.
//
// A cancelled ctx stops everything: in-flight attempts observe the
// cancellation through their context and no further attempt starts.
func (e *Executor) Execute(ctx context.Context, scope string, op Operation) (pipeline.Outcome, error) {
	if op == nil {
		return nil, ErrNilOperation
	}

	maxAttempts := e.policy.MaxAttempts()
	state := StateIdle
	transition := func(to State) {
		if e.onTransition != nil {
			e.onTransition(state, to)
		}
		state = to
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			transition(StateFaultedTerminal)
			return nil, err
		}

		transition(StateAttempting)
		out, err := e.runAttempt(ctx, op)

		terminal, cause, retryable := e.classify(out, err)
		if terminal == StateSucceeded {
			transition(StateSucceeded)
			e.logOutcome(scope, StateSucceeded, attempt)
			return out, nil
		}

		// A cancelled caller is never retried away.
		if ctx.Err() != nil {
			retryable = false
		}

		if !retryable || attempt == maxAttempts {
			if retryable {
				e.sink.Emit(ctx, observe.RetryExhausted{Scope: scope, Attempts: attempt, Cause: cause})
			}
			transition(terminal)
			e.logOutcome(scope, terminal, attempt)
			return out, err
		}

		delay := e.backoff.Delay(attempt)
		e.sink.Emit(ctx, observe.RetryAttempt{Scope: scope, Attempt: attempt, Delay: delay, Cause: cause})

		select {
		case <-ctx.Done():
			transition(StateFaultedTerminal)
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// classify maps one attempt's outcome onto its terminal state, the event
// cause, and whether policy allows another attempt.
func (e *Executor) classify(out pipeline.Outcome, err error) (State, string, bool) {
	if err != nil {
		return StateFaultedTerminal, CauseFault, e.policy.retryFault(err)
	}
	if out != nil && !out.IsSuccess() {
		return StateFailedTerminal, CauseFailure, e.policy.retryFailure(out.Errors())
	}
	return StateSucceeded, "", false
}

// runAttempt executes op, bounding it with the per-attempt timeout when one
// is configured. A timed-out attempt's goroutine keeps running until op
// honors its context.
func (e *Executor) runAttempt(ctx context.Context, op Operation) (pipeline.Outcome, error) {
	if e.policy.PerAttemptTimeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.policy.PerAttemptTimeout)
	defer cancel()

	type attemptResult struct {
		out pipeline.Outcome
		err error
	}
	done := make(chan attemptResult, 1)

	go func() {
		out, err := op(attemptCtx)
		done <- attemptResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-attemptCtx.Done():
		return nil, attemptCtx.Err()
	}
}

func (e *Executor) logOutcome(scope string, state State, attempts int) {
	if attempts == 1 && state == StateSucceeded {
		return
	}
	e.logger.Debug("retry finished",
		observe.String("scope", scope),
		observe.String("state", state.String()),
		observe.Int("attempts", attempts),
	)
}
