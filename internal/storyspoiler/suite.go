package storyspoiler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"storyspoiler-e2e/internal/apiclient"
	"storyspoiler-e2e/internal/config"
	"storyspoiler-e2e/internal/scenario"
)

// Suite owns the authenticated client and the runner for one run.
type Suite struct {
	Client   *apiclient.Client
	Runner   *scenario.Runner
	Pipeline *scenario.Pipeline
	logger   zerolog.Logger
}

// Open acquires a client for cfg.BaseURL and logs in once. The returned
// suite must be closed. On error nothing is left open.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts ...scenario.RunnerOption) (*Suite, error) {
	pipeline, err := Pipeline()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	client := apiclient.New(cfg.BaseURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithLogger(logger),
	)

	if _, err := client.Authenticate(ctx, apiclient.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
	}); err != nil {
		client.Close()
		return nil, err
	}

	runner := scenario.NewRunner(&scenario.Env{
		Client: client,
		State:  scenario.NewState(),
		Logger: logger,
	}, opts...)

	logger.Info().
		Str("run_id", runner.RunID()).
		Str("base_url", cfg.BaseURL).
		Int("steps", pipeline.Len()).
		Msg("suite ready")

	return &Suite{
		Client:   client,
		Runner:   runner,
		Pipeline: pipeline,
		logger:   logger,
	}, nil
}

// Run executes every scenario in order.
func (s *Suite) Run(ctx context.Context) scenario.Report {
	report := s.Runner.Run(ctx, s.Pipeline)

	s.logger.Info().
		Str("run_id", report.RunID).
		Int("passed", len(report.Results)-len(report.Failed())).
		Int("failed", len(report.Failed())).
		Msg("suite finished")

	return report
}

// Close releases the client.
func (s *Suite) Close() {
	s.Client.Close()
}
