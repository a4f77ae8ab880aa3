// Package scenario runs an ordered pipeline of named steps against one
// shared State. Each step declares the state keys it reads and writes, and
// the pipeline refuses an order in which a step would read a key no earlier
// step provides.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"storyspoiler-e2e/internal/apiclient"
)

// Sender issues one HTTP request. *apiclient.Client implements it.
type Sender interface {
	Send(ctx context.Context, method, path string, body any) (*apiclient.RawResponse, error)
}

// Env is handed to every step.
type Env struct {
	Client Sender
	State  *State
	Logger zerolog.Logger
}

// Step is one scenario.
type Step struct {
	Name     string
	Requires []Key
	Provides []Key
	Run      func(ctx context.Context, env *Env) error
}

// Pipeline is a validated, ordered list of steps.
type Pipeline struct {
	steps []Step
}

// NewPipeline checks that names are unique and non-empty, that every step has
// a Run func, and that each required key is provided by an earlier step.
func NewPipeline(steps ...Step) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, errors.New("pipeline has no steps")
	}

	names := make(map[string]struct{}, len(steps))
	provided := make(map[Key]string)

	for i, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("step %d has no name", i+1)
		}
		if _, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("duplicate step name %q", s.Name)
		}
		names[s.Name] = struct{}{}

		if s.Run == nil {
			return nil, fmt.Errorf("step %q has no run func", s.Name)
		}

		for _, k := range s.Requires {
			if _, ok := provided[k]; !ok {
				return nil, fmt.Errorf("step %q requires %q which no earlier step provides", s.Name, k)
			}
		}

		for _, k := range s.Provides {
			if _, ok := provided[k]; !ok {
				provided[k] = s.Name
			}
		}
	}

	return &Pipeline{steps: append([]Step(nil), steps...)}, nil
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// MissingStateError wraps the failure of a step that ran without the state
// it declared it needs, so cascading failures are explainable.
type MissingStateError struct {
	Keys []Key
	Err  error
}

func (e *MissingStateError) Error() string {
	keys := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		keys[i] = string(k)
	}
	return fmt.Sprintf("%v (missing state: %s)", e.Err, strings.Join(keys, ", "))
}

func (e *MissingStateError) Unwrap() error {
	return e.Err
}
