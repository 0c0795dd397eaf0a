package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crucible-tests/crucible/console"
	"github.com/crucible-tests/crucible/framework"
	"github.com/crucible-tests/crucible/report"
	"github.com/crucible-tests/crucible/selfcheck"
)

func main() {
	// .env supplies defaults only; explicit flags always win.
	_ = godotenv.Load()

	params := &commandParams{}
	cmd := &cobra.Command{
		Use:           "crucible",
		Short:         "run the crucible self-check test suite",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(params)
		},
	}
	params.bind(cmd)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSuite(params *commandParams) error {
	registry := framework.NewRegistry()
	if err := selfcheck.Register(registry); err != nil {
		return err
	}
	units := registry.Units()

	console.PrintFilterDescription(os.Stdout, params.filters)

	var testLogger framework.TestLogger
	var progress *console.Progress
	if params.quiet {
		progress = console.NewProgress(len(units), os.Stderr)
		testLogger = progress
	} else {
		testLogger = &console.TestLogger{
			Output:               os.Stdout,
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		}
	}

	runner := framework.NewRunner(framework.RunOptions{
		Concurrency: params.concurrency,
		Timeout:     params.timeout,
		GracePeriod: params.gracePeriod,
		Filter:      params.filters.AsFilter,
		TestLogger:  testLogger,
	})

	ctx := context.Background()
	if params.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.deadline)
		defer cancel()
	}

	fmt.Println("Running test suite")
	results := runner.Run(ctx, units)
	if progress != nil {
		progress.Finish()
	}

	summary := framework.Summarize(results)
	console.PrintSummary(os.Stdout, summary)

	if hint := console.RerunCommand(os.Args[0], summary); hint != "" {
		fmt.Printf("\nTo re-run only the failed tests:\n  %s\n", hint)
	}

	if params.outputPath != "" {
		if err := report.WriteFile(params.outputPath, results, summary); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", params.outputPath)
	}

	if !results.OK() {
		os.Exit(1)
	}
	return nil
}
