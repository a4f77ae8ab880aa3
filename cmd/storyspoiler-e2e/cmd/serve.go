package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storyspoiler-e2e/internal/apiclient"
	"storyspoiler-e2e/internal/twin"
)

func newServeCommand(global *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory Story Spoiler API for offline runs",
		Long: `serve starts an in-memory twin of the Story Spoiler API. It accepts the
configured username and password at login and answers the story endpoints
with the same status codes and messages as the real service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}

			logger := global.logger(cmd, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tw := twin.New(apiclient.Credentials{
				Username: cfg.Username,
				Password: cfg.Password,
			}, logger)

			return tw.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
