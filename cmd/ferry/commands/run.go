package commands

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.trai.ch/ferry/internal/app"
	"go.trai.ch/zerr"
)

// Environment variables read when the matching flag is not set.
const (
	envRef              = "FERRY_REF"
	envIsTag            = "FERRY_IS_TAG"
	envToolchainVersion = "FERRY_TOOLCHAIN_VERSION"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline for every matrix environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := runOptions(cmd)
			if err != nil {
				return err
			}

			if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
				plan, err := c.app.Plan(cmd.Context(), opts)
				if err != nil {
					return err
				}
				printPlan(cmd.OutOrStdout(), plan)
				return nil
			}

			report, err := c.app.Run(cmd.Context(), opts)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
	cmd.Flags().String("ref", "", "Git ref that triggered the run (defaults to $"+envRef+")")
	cmd.Flags().Bool("tag", false, "Treat the ref as a tag push (defaults to $"+envIsTag+")")
	cmd.Flags().String("toolchain-version", "", "Toolchain version selected by the trigger (defaults to $"+envToolchainVersion+")")
	cmd.Flags().Bool("dry-run", false, "Resolve environments and deploy gates without running anything")
	cmd.Flags().IntP("parallel", "p", 1, "Number of environments to run at once")
	cmd.Flags().String("metrics-file", "", "Write run metrics in the Prometheus text format to this file")
	return cmd
}

func runOptions(cmd *cobra.Command) (app.RunOptions, error) {
	flags := cmd.Flags()
	opts := app.RunOptions{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Ref, _ = flags.GetString("ref")
	opts.IsTag, _ = flags.GetBool("tag")
	opts.ToolchainVersion, _ = flags.GetString("toolchain-version")
	opts.Parallel, _ = flags.GetInt("parallel")
	opts.MetricsFile, _ = flags.GetString("metrics-file")

	if !flags.Changed("ref") {
		opts.Ref = os.Getenv(envRef)
	}
	if !flags.Changed("toolchain-version") {
		opts.ToolchainVersion = os.Getenv(envToolchainVersion)
	}
	if v := os.Getenv(envIsTag); !flags.Changed("tag") && v != "" {
		isTag, err := strconv.ParseBool(v)
		if err != nil {
			return opts, zerr.With(zerr.Wrap(err, "invalid boolean"), "variable", envIsTag)
		}
		opts.IsTag = isTag
	}
	if opts.Parallel < 1 {
		return opts, zerr.With(zerr.New("parallel must be at least 1"), "parallel", opts.Parallel)
	}
	return opts, nil
}
