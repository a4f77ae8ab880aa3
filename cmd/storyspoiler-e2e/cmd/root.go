package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"storyspoiler-e2e/internal/config"
	"storyspoiler-e2e/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile   string
	logLevel  string
	logFormat string
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "storyspoiler-e2e",
		Short: "End-to-end checks for the Story Spoiler API",
		Long: `storyspoiler-e2e authenticates against a Story Spoiler deployment and runs
the ordered story scenarios: create, edit, list and delete a story, then the
negative cases for missing fields and unknown ids.

Settings come from STORYSPOILER_* environment variables, optionally loaded
from a .env file, and can be overridden with flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment (ignored if missing)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(newRunCommand(flags))
	root.AddCommand(newServeCommand(flags))
	root.AddCommand(versionCmd)

	return root
}

// load reads the configuration and applies the global flag overrides.
func (f *globalFlags) load() (config.Config, error) {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return config.Config{}, err
	}

	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Logging.Format = f.logFormat
	}

	return cfg, nil
}

func (f *globalFlags) logger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	return logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr())
}
