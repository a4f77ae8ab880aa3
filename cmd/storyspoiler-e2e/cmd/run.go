package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"storyspoiler-e2e/internal/runlog"
	"storyspoiler-e2e/internal/scenario"
	"storyspoiler-e2e/internal/storyspoiler"
)

// errScenariosFailed makes the process exit non-zero after the report has
// been printed.
var errScenariosFailed = errors.New("one or more scenarios failed")

type runFlags struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
	valkey   string
}

func newRunCommand(global *globalFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ordered scenarios against a deployment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSuite(ctx, cmd, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "root URL of the Story Spoiler API (env STORYSPOILER_BASE_URL)")
	cmd.Flags().StringVar(&flags.username, "username", "", "login username (env STORYSPOILER_USERNAME)")
	cmd.Flags().StringVar(&flags.password, "password", "", "login password (env STORYSPOILER_PASSWORD)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-request timeout, 0 for none (env STORYSPOILER_TIMEOUT)")
	cmd.Flags().StringVar(&flags.valkey, "valkey-address", "", "record results in this Valkey (env STORYSPOILER_VALKEY_ADDRESS)")

	return cmd
}

func runSuite(ctx context.Context, cmd *cobra.Command, global *globalFlags, flags *runFlags) error {
	cfg, err := global.load()
	if err != nil {
		return err
	}

	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.username != "" {
		cfg.Username = flags.username
	}
	if flags.password != "" {
		cfg.Password = flags.password
	}
	if flags.timeout != 0 {
		cfg.Timeout = flags.timeout
	}
	if flags.valkey != "" {
		cfg.ValkeyAddress = flags.valkey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := global.logger(cmd, cfg)

	observers := runlog.Multi{runlog.NewLogObserver(logger)}

	if cfg.ValkeyAddress != "" {
		vc, err := runlog.NewValkeyClient(ctx, cfg.ValkeyAddress)
		if err != nil {
			return err
		}
		defer vc.Close()

		ledger := runlog.NewValkeyLedger(vc, "", logger)
		observers = append(observers, ledger)
		logger.Info().Str("stream", ledger.Stream()).Msg("recording results in valkey")
	}

	suite, err := storyspoiler.Open(ctx, cfg, logger, scenario.WithObserver(observers))
	if err != nil {
		return err
	}
	defer suite.Close()

	report := suite.Run(ctx)

	if err := writeReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if !report.Passed() {
		return errScenariosFailed
	}

	return nil
}

// writeReport prints one row per scenario followed by the failure details.
func writeReport(w io.Writer, report scenario.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s\n", report.RunID)
	fmt.Fprintln(tw, "#\tSCENARIO\tRESULT\tDURATION")
	for _, res := range report.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			res.Index, res.Step, runlog.Status(res), res.Duration.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	failed := report.Failed()
	if len(failed) == 0 {
		_, err := fmt.Fprintf(w, "\nAll %d scenarios passed\n", len(report.Results))
		return err
	}

	fmt.Fprintf(w, "\n%d of %d scenarios failed:\n", len(failed), len(report.Results))
	for _, res := range failed {
		fmt.Fprintf(w, "  %d %s: %v\n", res.Index, res.Step, res.Err)
	}

	return nil
}
