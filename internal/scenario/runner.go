package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one step.
type Result struct {
	Index    int
	Step     string
	Err      error
	Duration time.Duration
	Missing  []Key
}

// Passed reports whether the step succeeded.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Report collects the results of one run in execution order.
type Report struct {
	RunID   string
	Results []Result
}

// Passed reports whether every step succeeded.
func (r Report) Passed() bool {
	return len(r.Failed()) == 0
}

// Failed returns the failing results.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Observer is notified around every step.
type Observer interface {
	StepStarted(runID string, index int, step Step)
	StepFinished(runID string, res Result)
}

// Runner executes pipelines against one Env.
type Runner struct {
	env       *Env
	runID     string
	observers []Observer
	now       func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithObserver adds an observer. Observers are called in the order added.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		r.observers = append(r.observers, o)
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner creates a runner. A nil State in env is replaced by an empty one.
func NewRunner(env *Env, opts ...RunnerOption) *Runner {
	if env.State == nil {
		env.State = NewState()
	}

	r := &Runner{
		env:   env,
		runID: uuid.NewString(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunID identifies this runner's run.
func (r *Runner) RunID() string {
	return r.runID
}

// State returns the shared state.
func (r *Runner) State() *State {
	return r.env.State
}

// Run executes every step in order. A failing step does not stop the run.
// Once ctx is done the remaining steps are recorded as failed with the
// context error, without being run.
func (r *Runner) Run(ctx context.Context, p *Pipeline) Report {
	report := Report{RunID: r.runID}

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			res := Result{Index: i + 1, Step: step.Name, Err: fmt.Errorf("not run: %w", err)}
			r.notifyFinished(res)
			report.Results = append(report.Results, res)
			continue
		}

		report.Results = append(report.Results, r.RunStep(ctx, i+1, step))
	}

	return report
}

// RunStep executes a single step. index is 1-based and only used for
// reporting. Steps whose declared state is missing still run; a failure is
// then wrapped in *MissingStateError. A panic inside the step becomes its
// error.
func (r *Runner) RunStep(ctx context.Context, index int, step Step) (res Result) {
	res = Result{Index: index, Step: step.Name}
	res.Missing = r.env.State.Missing(step.Requires)

	for _, o := range r.observers {
		o.StepStarted(r.runID, index, step)
	}

	logger := r.env.Logger.With().
		Str("run_id", r.runID).
		Int("index", index).
		Str("step", step.Name).
		Logger()
	env := &Env{Client: r.env.Client, State: r.env.State, Logger: logger}

	start := r.now()

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
		}
		if res.Err != nil && len(res.Missing) > 0 {
			res.Err = &MissingStateError{Keys: res.Missing, Err: res.Err}
		}
		res.Duration = r.now().Sub(start)
		r.notifyFinished(res)
	}()

	res.Err = step.Run(ctx, env)

	return res
}

func (r *Runner) notifyFinished(res Result) {
	for _, o := range r.observers {
		o.StepFinished(r.runID, res)
	}
}
