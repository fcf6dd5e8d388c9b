package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"modgen/internal/diag"
	"modgen/internal/emit"
	"modgen/internal/layout"
	"modgen/internal/literal"
	"modgen/internal/metrics"
	"modgen/internal/observ"
	"modgen/internal/source"
	"modgen/internal/trace"
	"modgen/internal/translate"
	"modgen/internal/unitfile"
)

// Options configures a driver run.
type Options struct {
	Target layout.Target
	Rules  translate.NameRules
	// Jobs bounds concurrent units; 0 means GOMAXPROCS.
	Jobs int
	// CacheDir enables the disk cache when non-empty.
	CacheDir string
	// ClassifyEntries sizes the shared literal cache; 0 disables it.
	ClassifyEntries int
	MaxDiagnostics  int
	// Selection is passed to every unit's translation.
	Selection Selection

	Metrics  *metrics.Set
	Timer    *observ.Timer
	Observer UnitObserver
}

// UnitResult is the outcome for one input path.
type UnitResult struct {
	Path   string
	FileID source.FileID
	// Doc is empty when the unit could not be loaded or decoded.
	Doc emit.Document
	// Result is nil for cache hits and for units that failed before translation.
	Result *translate.Result
	Bag    *diag.Bag
	Cached bool
}

// Failed reports whether the unit produced errors.
func (r UnitResult) Failed() bool { return r.Bag != nil && r.Bag.HasErrors() }

// Run loads, decodes and translates every path. Results keep the order of
// paths. The returned error is reserved for setup failures and cancellation;
// per-unit problems are diagnostics.
func Run(ctx context.Context, paths []string, opts Options) (*source.FileSet, []UnitResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End(fmt.Sprintf("%d units", len(paths)))

	if opts.Target.Triple == "" {
		opts.Target = layout.X86_64LinuxGNU()
	}
	var classifier literal.Classifier = literal.Default
	if opts.ClassifyEntries > 0 {
		c, err := literal.NewCache(opts.ClassifyEntries)
		if err != nil {
			return nil, nil, fmt.Errorf("literal cache: %w", err)
		}
		classifier = c
	}
	var cache *DiskCache
	if opts.CacheDir != "" {
		c, err := OpenDiskCache(opts.CacheDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
		cache = c
	}

	fileSet := source.NewFileSet()
	results := make([]UnitResult, len(paths))

	// FileSet is not safe for concurrent use; loading stays sequential.
	loadIdx := opts.Timer.Begin("load")
	loaded := 0
	for i, p := range paths {
		results[i] = UnitResult{Path: p, Bag: diag.NewBag(opts.MaxDiagnostics)}
		id, err := fileSet.Load(p)
		if err != nil {
			results[i].Bag.Add(diag.NewError(diag.IOLoadFailed, p, source.Pos{File: source.NoFileID}, err.Error()))
			continue
		}
		results[i].FileID = id
		loaded++
	}
	opts.Timer.End(loadIdx, fmt.Sprintf("%d/%d files", loaded, len(paths)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(1, len(paths))))

	passCtx, pass := trace.Start(gctx, trace.ScopePass, "translate")
	for i := range results {
		if results[i].FileID == source.NoFileID {
			notify(opts.Observer, results[i].Path, UnitFailed, 0)
			opts.Metrics.ObserveUnit(metrics.OutcomeFailed)
			continue
		}
		g.Go(func() error {
			if err := passCtx.Err(); err != nil {
				return err
			}
			started := time.Now()
			status := runUnit(passCtx, fileSet.Get(results[i].FileID), &results[i], cache, classifier, opts)
			notify(opts.Observer, results[i].Path, status, time.Since(started))
			return nil
		})
	}
	err := g.Wait()
	pass.End("")
	if err == nil {
		err = ctx.Err()
	}
	return fileSet, results, err
}

func runUnit(ctx context.Context, file *source.File, out *UnitResult, cache *DiskCache, classifier literal.Classifier, opts Options) UnitStatus {
	phase := opts.Timer.Begin("unit:" + out.Path)

	key := CacheKey(file.Hash, opts.Target, opts.Rules, opts.Selection)
	if cache != nil {
		var payload DiskPayload
		hit, err := cache.Get(key, &payload)
		switch {
		case err != nil:
			out.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheFailed, out.Path, source.Pos{File: file.ID}, err.Error()))
		case hit:
			out.Doc = payload.Doc
			out.Cached = true
			payload.Doc.DiagnosticsInto(out.Bag)
			fixFiles(out.Bag, file.ID)
			opts.Timer.End(phase, "cached")
			opts.Metrics.ObserveUnit(metrics.OutcomeCached)
			return UnitCached
		}
	}

	unit, err := unitfile.Decode(file.Path, file.Content, file.ID)
	if err != nil {
		out.Bag.Add(diag.NewError(diag.IODecodeFailed, out.Path, source.Pos{File: file.ID}, err.Error()))
		opts.Timer.End(phase, "decode failed")
		opts.Metrics.ObserveUnit(metrics.OutcomeFailed)
		return UnitFailed
	}

	res := translate.Translate(ctx, unit, translate.Options{
		Rules:          opts.Rules,
		Target:         opts.Target,
		Classifier:     classifier,
		MaxDiagnostics: opts.MaxDiagnostics,
		Off:            opts.Selection.Off,
		Defines:        opts.Selection.Defines,
	})
	out.Result = res
	out.Doc = emit.Build(res)
	out.Bag.Merge(res.Bag)
	opts.Metrics.ObserveResult(res)

	status := UnitTranslated
	if res.Bag.HasErrors() || res.Err != nil {
		status = UnitFailed
	}

	// a cancelled run leaves a partial document; never cache it
	if cache != nil && res.Err == nil {
		payload := &DiskPayload{Path: out.Path, Doc: out.Doc, Broken: res.Bag.HasErrors()}
		if err := cache.Put(key, payload); err != nil {
			out.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheFailed, out.Path, source.Pos{File: file.ID}, err.Error()))
		}
	}
	opts.Timer.End(phase, fmt.Sprintf("%d decls", len(res.Decls)))
	return status
}

// fixFiles points restored diagnostics at the current FileID.
func fixFiles(bag *diag.Bag, id source.FileID) {
	items := bag.Items()
	for i := range items {
		if items[i].Pos.Known() {
			items[i].Pos.File = id
		}
	}
}

func notify(obs UnitObserver, path string, status UnitStatus, elapsed time.Duration) {
	if obs != nil {
		obs(UnitEvent{Path: path, Status: status, Elapsed: elapsed})
	}
}

// ListUnitFiles expands directories into the unit files below them. Plain
// file arguments are kept as given. The output is sorted and deduplicated.
func ListUnitFiles(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}
	for _, arg := range args {
		err := filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if p == arg || isUnitFile(d.Name()) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, errors.New("no unit files found")
	}
	return files, nil
}

func isUnitFile(name string) bool {
	if name == "modgen.toml" {
		return false
	}
	return unitfile.DetectFormat(name) != unitfile.FormatUnknown
}
