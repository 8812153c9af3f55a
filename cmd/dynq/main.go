// Command dynq loads a scene, runs its queries for a number of cycles and
// logs the entities every query matched.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg Config, logOutput io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dynq",
		Short:         "Run dynamic entity queries against a scene",
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.Space, "space", cfg.Space, "default space of spatial components (local or global)")

	root.AddCommand(newRunCmd(&cfg, logOutput), newAccessCmd(&cfg, logOutput))

	return root
}

func newRunCmd(cfg *Config, logOutput io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "Run the queries of a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, logger, err := setup(cfg, args, logOutput)
			if err != nil {
				return err
			}

			defer runner.Close()

			defer cfg.StartProfile().Stop()

			results, err := runner.Run(cfg.Cycles)

			var matched int
			for _, result := range results {
				matched += len(result.Entities)
			}

			logger.Info().
				Int("cycles", cfg.Cycles).
				Int("matched", matched).
				Msg("Scene done")

			if cfg.Metrics {
				logMetrics(logger)
			}

			return err
		},
	}

	cmd.Flags().IntVar(&cfg.Cycles, "cycles", cfg.Cycles, "number of cycles to run")
	cmd.Flags().StringVar(&cfg.Profile, "profile", cfg.Profile, "write a cpu or mem profile")
	cmd.Flags().BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "log the query metrics when done")

	return cmd
}

func newAccessCmd(cfg *Config, logOutput io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "access [scene]",
		Short: "List the queries of a scene that may not run concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, _, err := setup(cfg, args, logOutput)
			if err != nil {
				return err
			}

			defer runner.Close()

			conflicts, err := runner.AccessConflicts()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, pair := range conflicts {
				fmt.Fprintf(out, "%s <-> %s\n", pair[0], pair[1])
			}

			return nil
		},
	}
}

func setup(cfg *Config, args []string, logOutput io.Writer) (*Runner, zerolog.Logger, error) {
	if len(args) == 1 {
		cfg.Scene = args[0]
	}

	if cfg.Scene == "" {
		return nil, zerolog.Nop(), eris.New("no scene given, pass a path or set DYNQ_SCENE")
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}

	level, _ := cfg.Level()
	space, _ := cfg.DefaultSpace()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: logOutput, NoColor: true}).
		Level(level).
		With().Timestamp().
		Logger()

	scene, err := LoadScene(cfg.Scene)
	if err != nil {
		return nil, logger, err
	}

	runner, err := NewRunner(scene, space, logger)
	if err != nil {
		return nil, logger, err
	}

	return runner, logger, nil
}

func logMetrics(logger zerolog.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to gather metrics")
		return
	}

	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "dynquery_") {
			continue
		}

		for _, metric := range family.GetMetric() {
			event := logger.Info().Str("metric", family.GetName())

			if counter := metric.GetCounter(); counter != nil {
				event = event.Float64("value", counter.GetValue())
			}

			if histogram := metric.GetHistogram(); histogram != nil {
				event = event.
					Uint64("count", histogram.GetSampleCount()).
					Float64("sum", histogram.GetSampleSum())
			}

			event.Msg("Metric")
		}
	}
}
