package console

import (
	"regexp"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/crucible-tests/crucible/framework"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// RerunCommand builds a copy-pastable command line that re-runs exactly the
// failed units from a summary. Returns "" when nothing failed.
func RerunCommand(binary string, summary framework.Summary) string {
	if len(summary.Failures) == 0 {
		return ""
	}
	var patterns []string
	for _, f := range summary.Failures {
		patterns = append(patterns, "^"+regexp.QuoteMeta(f.Unit.Name())+"$")
	}
	var cmd commandBuilder
	cmd.add(binary, "--run", strings.Join(patterns, "|"))
	return cmd.String()
}
