package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"modgen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "modgen",
	Short: "Translate C declarations into target-language bindings",
	Long: `modgen translates the declarations and object-like macros of a C header,
given as a unit file (TOML, YAML or JSON), into typed target declarations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyColor(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		runTraceCleanup()
	},
}

// traceCleanup flushes the tracer; set by PersistentPreRunE.
var traceCleanup func()

func runTraceCleanup() {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

// errHasErrors signals that diagnostics with error severity were printed.
var errHasErrors = errors.New("translation finished with errors")

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	registerPersistentFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		runTraceCleanup()
		if !errors.Is(err, errHasErrors) {
			fmt.Fprintln(os.Stderr, "modgen:", err)
		}
		os.Exit(1)
	}
}

// registerPersistentFlags adds the global flags to root.
func registerPersistentFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "report phase timings as a diagnostic")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per unit")
	pf.String("config", "", "path to modgen.toml (default: search upward from the working directory)")
	pf.String("trace", "", "trace output file (\"-\" for stderr; .ndjson/.jsonl selects NDJSON)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace event format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec
}
