// Package runlog records scenario outcomes: as log lines, and optionally as
// entries in a Valkey stream so runs can be compared over time.
package runlog

import (
	"github.com/rs/zerolog"

	"storyspoiler-e2e/internal/scenario"
)

// LogObserver writes one line per step start and finish.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver returns an observer logging to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) StepStarted(runID string, index int, step scenario.Step) {
	o.logger.Info().
		Str("run_id", runID).
		Int("index", index).
		Str("step", step.Name).
		Msg("step started")
}

func (o *LogObserver) StepFinished(runID string, res scenario.Result) {
	if res.Passed() {
		o.logger.Info().
			Str("run_id", runID).
			Int("index", res.Index).
			Str("step", res.Step).
			Dur("duration", res.Duration).
			Msg("step passed")
		return
	}

	o.logger.Error().
		Err(res.Err).
		Str("run_id", runID).
		Int("index", res.Index).
		Str("step", res.Step).
		Dur("duration", res.Duration).
		Msg("step failed")
}

// Multi fans out to several observers in order.
type Multi []scenario.Observer

func (m Multi) StepStarted(runID string, index int, step scenario.Step) {
	for _, o := range m {
		o.StepStarted(runID, index, step)
	}
}

func (m Multi) StepFinished(runID string, res scenario.Result) {
	for _, o := range m {
		o.StepFinished(runID, res)
	}
}

// Status is the outcome label stored for a result.
func Status(res scenario.Result) string {
	if res.Passed() {
		return "passed"
	}
	return "failed"
}
