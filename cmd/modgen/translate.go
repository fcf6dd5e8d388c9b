package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"modgen/internal/diag"
	"modgen/internal/diagfmt"
	"modgen/internal/driver"
	"modgen/internal/emit"
	"modgen/internal/metrics"
	"modgen/internal/observ"
	"modgen/internal/source"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] [unit-file|directory]...",
	Short: "Translate unit files into target declarations",
	Long: `Translate unit files (.toml, .yaml, .yml, .json) into target declarations.
Without arguments the [units].include list of modgen.toml is used.`,
	RunE: runTranslate,
}

func init() {
	addTranslateFlags(translateCmd)
}

func addTranslateFlags(cmd *cobra.Command) {
	addTargetFlags(cmd)
	cmd.Flags().String("format", "text", "output format (text|json)")
	cmd.Flags().String("diagnostics", "pretty", "diagnostics format on stderr (pretty|json)")
	cmd.Flags().String("out-dir", "", "write one output file per unit into this directory")
	cmd.Flags().Int("jobs", 0, "max parallel units (0=auto)")
	cmd.Flags().Bool("cache", false, "enable the on-disk translation cache")
	cmd.Flags().String("cache-dir", "", "cache directory (implies --cache)")
	cmd.Flags().String("metrics-out", "", "write Prometheus text-format counters to this file")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in diagnostics")
	cmd.Flags().BoolP("verbose", "v", false, "report each unit as it finishes")
	cmd.Flags().StringArray("off", nil, "leave a category out (functions|variables|enums|macros); repeatable")
	cmd.Flags().StringArrayP("define", "D", nil, "define a macro NAME[=BODY] visible to macro bodies; repeatable")
	cmd.Flags().String("defines", "", "file with one NAME[=BODY] define per line")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	metricsOut, err := cmd.Flags().GetString("metrics-out")
	if err != nil {
		return fmt.Errorf("failed to get metrics-out flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	paths, err := inputPaths(s, args)
	if err != nil {
		return err
	}
	cacheDir, err := s.cacheDir()
	if err != nil {
		return err
	}

	opts := driver.Options{
		Target:          s.target,
		Rules:           s.rules,
		Jobs:            jobs,
		CacheDir:        cacheDir,
		ClassifyEntries: s.cfg.Cache.ClassifyEntries,
		MaxDiagnostics:  maxDiagnostics,
		Selection:       s.sel,
	}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}
	var registry *prometheus.Registry
	if metricsOut != "" {
		registry = prometheus.NewRegistry()
		opts.Metrics = metrics.New()
		if err := opts.Metrics.Register(registry); err != nil {
			return err
		}
	}
	if verbose {
		stderr := cmd.ErrOrStderr()
		opts.Observer = func(ev driver.UnitEvent) {
			fmt.Fprintf(stderr, "%-10s %s (%.1f ms)\n", ev.Status, ev.Path, toMillis(ev.Elapsed))
		}
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	fs, results, err := driver.Run(cmd.Context(), paths, opts)
	stopProfiling()
	if err != nil {
		return err
	}

	if err := writeOutputs(cmd.OutOrStdout(), s.cfg.Output.Format, s.cfg.Output.Dir, results); err != nil {
		return err
	}

	bag := collectDiagnostics(results)
	if showTimings {
		driver.AppendTimings(bag, opts.Timer.Report())
	}
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	if err := writeDiagnostics(cmd.ErrOrStderr(), s.cfg.Output.Diagnostics, bag, fs, pathMode, withNotes); err != nil {
		return err
	}

	if registry != nil {
		if err := metrics.WriteFile(metricsOut, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if bag.HasErrors() {
		return errHasErrors
	}
	return nil
}

// inputPaths expands arguments, or falls back to the project file's
// [units].include.
func inputPaths(s *settings, args []string) ([]string, error) {
	if len(args) > 0 {
		return driver.ListUnitFiles(args)
	}
	if s.manifest == nil || len(s.cfg.Units.Include) == 0 {
		return nil, errors.New("no unit files given and no [units].include in modgen.toml")
	}
	m := *s.manifest
	m.Config = s.cfg
	return m.UnitPaths()
}

func collectDiagnostics(results []driver.UnitResult) *diag.Bag {
	bag := diag.NewBag(0)
	for _, r := range results {
		bag.Merge(r.Bag)
	}
	bag.Sort()
	return bag
}

func writeDiagnostics(w io.Writer, format string, bag *diag.Bag, fs *source.FileSet, pathMode diagfmt.PathMode, withNotes bool) error {
	switch format {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		})
	default:
		if bag.Len() == 0 {
			return nil
		}
		return diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     colorEnabled(),
			Context:   true,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	}
}

// translatedDocs skips units that never reached translation.
func translatedDocs(results []driver.UnitResult) []emit.Document {
	docs := make([]emit.Document, 0, len(results))
	for _, r := range results {
		if r.Doc.Unit == "" {
			continue
		}
		docs = append(docs, r.Doc)
	}
	return docs
}

// writeOutputs renders to out, or to one file per unit under dir.
func writeOutputs(out io.Writer, format, dir string, results []driver.UnitResult) error {
	docs := translatedDocs(results)
	if dir == "" {
		if format == "json" {
			return emit.JSON(out, docs)
		}
		for i, doc := range docs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := emit.Text(out, doc); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, doc := range docs {
		path := filepath.Join(dir, outputName(doc.Unit, format))
		if err := writeDocFile(path, format, doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func outputName(unit, format string) string {
	if format == "json" {
		return unit + ".json"
	}
	return unit + ".txt"
}

func writeDocFile(path, format string, doc emit.Document) (err error) {
	// #nosec G304 -- path is derived from the output directory flag
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if format == "json" {
		return emit.JSON(f, []emit.Document{doc})
	}
	return emit.Text(f, doc)
}
