package main

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucible-tests/crucible/framework"
)

const (
	defaultConcurrency = 1
	defaultTimeout     = 30 * time.Second
	defaultGracePeriod = 5 * time.Second
)

type commandParams struct {
	filters     framework.RegexFilters
	concurrency int
	timeout     time.Duration
	gracePeriod time.Duration
	deadline    time.Duration
	outputPath  string
	quiet       bool
	debug       bool
	debugAll    bool
}

func (c *commandParams) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.IntVarP(&c.concurrency, "concurrency", "j", envInt("CRUCIBLE_CONCURRENCY", defaultConcurrency),
		"maximum number of parallel test workers (1 = sequential)")
	fs.DurationVar(&c.timeout, "timeout", envDuration("CRUCIBLE_TIMEOUT", defaultTimeout),
		"per-test timeout (0 disables)")
	fs.DurationVar(&c.gracePeriod, "grace", envDuration("CRUCIBLE_GRACE", defaultGracePeriod),
		"teardown grace period after a test times out")
	fs.DurationVar(&c.deadline, "deadline", 0,
		"global deadline for the whole run (0 disables)")
	fs.StringVarP(&c.outputPath, "output", "o", "", "write a JSON report to this file")
	fs.BoolVarP(&c.quiet, "quiet", "q", false, "show a progress bar instead of per-test output")
	fs.BoolVar(&c.debug, "debug", false, "show captured debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show captured debug output for all tests")
}

// envInt reads a .env-provided default; flags still win over it.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
