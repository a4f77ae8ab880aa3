package scenario_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyspoiler-e2e/internal/scenario"
)

const keyID scenario.Key = "story.id"

type recordingObserver struct {
	started  []string
	finished []scenario.Result
}

func (o *recordingObserver) StepStarted(_ string, _ int, step scenario.Step) {
	o.started = append(o.started, step.Name)
}

func (o *recordingObserver) StepFinished(_ string, res scenario.Result) {
	o.finished = append(o.finished, res)
}

func noop(context.Context, *scenario.Env) error { return nil }

func TestNewPipeline_Validation(t *testing.T) {
	tests := []struct {
		name   string
		steps  []scenario.Step
		errMsg string
	}{
		{"empty", nil, "no steps"},
		{"unnamed", []scenario.Step{{Run: noop}}, "has no name"},
		{"no run", []scenario.Step{{Name: "a"}}, "has no run func"},
		{
			"duplicate",
			[]scenario.Step{{Name: "a", Run: noop}, {Name: "a", Run: noop}},
			`duplicate step name "a"`,
		},
		{
			"requires before provides",
			[]scenario.Step{
				{Name: "edit", Requires: []scenario.Key{keyID}, Run: noop},
				{Name: "create", Provides: []scenario.Key{keyID}, Run: noop},
			},
			`step "edit" requires "story.id"`,
		},
		{
			"self provided does not count",
			[]scenario.Step{
				{Name: "loop", Requires: []scenario.Key{keyID}, Provides: []scenario.Key{keyID}, Run: noop},
			},
			`step "loop" requires "story.id"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scenario.NewPipeline(tc.steps...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestNewPipeline_CopiesSteps(t *testing.T) {
	steps := []scenario.Step{{Name: "a", Run: noop}, {Name: "b", Run: noop}}

	p, err := scenario.NewPipeline(steps...)
	require.NoError(t, err)

	steps[0].Name = "mutated"
	assert.Equal(t, "a", p.Steps()[0].Name)
	assert.Equal(t, 2, p.Len())
}

func TestRunner_ThreadsStateInOrder(t *testing.T) {
	var order []string

	p, err := scenario.NewPipeline(
		scenario.Step{
			Name:     "create",
			Provides: []scenario.Key{keyID},
			Run: func(_ context.Context, env *scenario.Env) error {
				order = append(order, "create")
				env.State.Set(keyID, "abc")
				return nil
			},
		},
		scenario.Step{
			Name:     "edit",
			Requires: []scenario.Key{keyID},
			Run: func(_ context.Context, env *scenario.Env) error {
				order = append(order, "edit:"+env.State.Value(keyID))
				return nil
			},
		},
	)
	require.NoError(t, err)

	obs := &recordingObserver{}
	runner := scenario.NewRunner(&scenario.Env{}, scenario.WithObserver(obs), scenario.WithRunID("run-1"))

	report := runner.Run(context.Background(), p)

	assert.True(t, report.Passed())
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, []string{"create", "edit:abc"}, order)
	assert.Equal(t, []string{"create", "edit"}, obs.started)
	require.Len(t, obs.finished, 2)
	assert.Equal(t, 1, obs.finished[0].Index)
	assert.Equal(t, 2, obs.finished[1].Index)
	assert.Empty(t, report.Results[1].Missing)
}

func TestRunner_ContinuesAfterFailureAndExplainsCascade(t *testing.T) {
	errCreate := errors.New("create failed")
	errEdit := errors.New("edit failed")
	var ran []string

	p, err := scenario.NewPipeline(
		scenario.Step{
			Name:     "create",
			Provides: []scenario.Key{keyID},
			Run: func(context.Context, *scenario.Env) error {
				ran = append(ran, "create")
				return errCreate
			},
		},
		scenario.Step{
			Name:     "edit",
			Requires: []scenario.Key{keyID},
			Run: func(context.Context, *scenario.Env) error {
				ran = append(ran, "edit")
				return errEdit
			},
		},
		scenario.Step{
			Name: "independent",
			Run: func(context.Context, *scenario.Env) error {
				ran = append(ran, "independent")
				return nil
			},
		},
	)
	require.NoError(t, err)

	report := scenario.NewRunner(&scenario.Env{}).Run(context.Background(), p)

	assert.Equal(t, []string{"create", "edit", "independent"}, ran)
	assert.False(t, report.Passed())
	require.Len(t, report.Failed(), 2)

	assert.ErrorIs(t, report.Results[0].Err, errCreate)

	editErr := report.Results[1].Err
	var missing *scenario.MissingStateError
	require.ErrorAs(t, editErr, &missing)
	assert.Equal(t, []scenario.Key{keyID}, missing.Keys)
	assert.ErrorIs(t, editErr, errEdit)
	assert.Contains(t, editErr.Error(), "missing state: story.id")

	assert.True(t, report.Results[2].Passed())
}

func TestRunner_MissingStateButPassingStepIsNotWrapped(t *testing.T) {
	p, err := scenario.NewPipeline(
		scenario.Step{Name: "create", Provides: []scenario.Key{keyID}, Run: noop},
		scenario.Step{Name: "edit", Requires: []scenario.Key{keyID}, Run: noop},
	)
	require.NoError(t, err)

	report := scenario.NewRunner(&scenario.Env{}).Run(context.Background(), p)

	assert.True(t, report.Passed())
	assert.Equal(t, []scenario.Key{keyID}, report.Results[1].Missing)
}

func TestRunner_RecoversPanics(t *testing.T) {
	p, err := scenario.NewPipeline(
		scenario.Step{Name: "boom", Run: func(context.Context, *scenario.Env) error { panic("kaboom") }},
		scenario.Step{Name: "after", Run: noop},
	)
	require.NoError(t, err)

	report := scenario.NewRunner(&scenario.Env{}).Run(context.Background(), p)

	require.Len(t, report.Results, 2)
	require.Error(t, report.Results[0].Err)
	assert.Contains(t, report.Results[0].Err.Error(), "panic: kaboom")
	assert.True(t, report.Results[1].Passed())
}

func TestRunner_StopsRunningOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string

	p, err := scenario.NewPipeline(
		scenario.Step{Name: "first", Run: func(context.Context, *scenario.Env) error {
			ran = append(ran, "first")
			cancel()
			return nil
		}},
		scenario.Step{Name: "second", Run: func(context.Context, *scenario.Env) error {
			ran = append(ran, "second")
			return nil
		}},
	)
	require.NoError(t, err)

	obs := &recordingObserver{}
	report := scenario.NewRunner(&scenario.Env{}, scenario.WithObserver(obs)).Run(ctx, p)

	assert.Equal(t, []string{"first"}, ran)
	require.Len(t, report.Results, 2)
	assert.ErrorIs(t, report.Results[1].Err, context.Canceled)
	assert.Len(t, obs.finished, 2)
	assert.Equal(t, []string{"first"}, obs.started)
}

func TestState(t *testing.T) {
	s := scenario.NewState()

	_, ok := s.Get(keyID)
	assert.False(t, ok)

	s.Set(keyID, "")
	_, ok = s.Get(keyID)
	assert.False(t, ok, "empty values count as missing")

	s.Set(keyID, "x")
	v, ok := s.Get(keyID)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	assert.Equal(t, []scenario.Key{"a", "b"}, s.Missing([]scenario.Key{"b", keyID, "a"}))
}
