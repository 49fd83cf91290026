// ABOUTME: Shared helpers for CLI commands
// ABOUTME: Argument parsing for record ids and tabular output to stdout
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Stdout receives command output. Tests replace it.
var Stdout io.Writer = os.Stdout

func printf(format string, args ...any) {
	_, _ = fmt.Fprintf(Stdout, format, args...)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func newTable(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(w, strings.Join(rule, "\t"))
	return w
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = orDash(fmt.Sprint(c))
	}
	_, _ = fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// positionalID reads the first positional argument as a record id.
func positionalID(fs *flag.FlagSet, noun string) (int, error) {
	if fs.NArg() < 1 {
		return 0, fmt.Errorf("%s ID is required", noun)
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %q", noun, fs.Arg(0))
	}
	return id, nil
}

// parseIDs reads a comma separated id list such as "1,2,3".
func parseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid ID: %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
