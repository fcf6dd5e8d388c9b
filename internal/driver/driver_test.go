package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"modgen/internal/cdecl"
	"modgen/internal/diag"
	"modgen/internal/layout"
	"modgen/internal/metrics"
	"modgen/internal/observ"
	"modgen/internal/source"
	"modgen/internal/translate"
)

const goodUnit = `
[[macros]]
name = "LIMIT"
body = "42"
line = 1

[[decls]]
kind = "var"
name = "counter"
type = "int"
line = 3
`

const dupUnit = `
[[decls]]
kind = "var"
name = "dup"
type = "int"
line = 1

[[decls]]
kind = "var"
name = "dup"
type = "long"
line = 2
`

func writeUnit(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunKeepsOrderAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeUnit(t, dir, "b.toml", goodUnit),
		filepath.Join(dir, "missing.toml"),
		writeUnit(t, dir, "bad.toml", "name = "),
		writeUnit(t, dir, "a.toml", dupUnit),
	}

	var mu sync.Mutex
	seen := map[string]UnitStatus{}
	m := metrics.New()
	_, results, err := Run(context.Background(), paths, Options{
		Jobs:    2,
		Metrics: m,
		Observer: func(ev UnitEvent) {
			mu.Lock()
			seen[filepath.Base(ev.Path)] = ev.Status
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(paths) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d is %s, want %s", i, r.Path, paths[i])
		}
	}

	good := results[0]
	if good.Failed() || good.Doc.Unit != "b" || len(good.Doc.Decls) != 2 {
		t.Fatalf("unexpected good unit: %+v", good.Doc)
	}
	if results[1].Bag.Count(diag.IOLoadFailed) != 1 {
		t.Fatalf("missing file: %+v", results[1].Bag.Items())
	}
	if results[2].Bag.Count(diag.IODecodeFailed) != 1 {
		t.Fatalf("bad file: %+v", results[2].Bag.Items())
	}
	if results[3].Bag.Count(diag.DuplicateDeclaration) != 1 {
		t.Fatalf("duplicate: %+v", results[3].Bag.Items())
	}

	want := map[string]UnitStatus{
		"b.toml":       UnitTranslated,
		"missing.toml": UnitFailed,
		"bad.toml":     UnitFailed,
		"a.toml":       UnitFailed,
	}
	for name, st := range want {
		if seen[name] != st {
			t.Errorf("%s: status %s, want %s", name, seen[name], st)
		}
	}
	if got := testutil.ToFloat64(m.Units.WithLabelValues(metrics.OutcomeFailed)); got != 3 {
		t.Fatalf("failed units = %v, want 3", got)
	}
}

func TestRunUsesDiskCache(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	paths := []string{
		writeUnit(t, dir, "good.toml", goodUnit),
		writeUnit(t, dir, "dup.toml", dupUnit),
	}
	opts := Options{CacheDir: cacheDir, ClassifyEntries: 16}

	_, first, err := Run(context.Background(), paths, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range first {
		if r.Cached {
			t.Fatalf("%s: cold cache reported a hit", r.Path)
		}
	}

	timer := observ.NewTimer()
	opts.Timer = timer
	_, second, err := Run(context.Background(), paths, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range second {
		if !r.Cached || r.Result != nil {
			t.Fatalf("%s: expected a cache hit", r.Path)
		}
		if len(r.Doc.Decls) != len(first[i].Doc.Decls) {
			t.Fatalf("%s: cached doc differs", r.Path)
		}
		if r.Bag.Len() != first[i].Bag.Len() {
			t.Fatalf("%s: cached diagnostics %d, want %d", r.Path, r.Bag.Len(), first[i].Bag.Len())
		}
		for _, d := range r.Bag.Items() {
			if d.Pos.Known() && d.Pos.File != r.FileID {
				t.Fatalf("restored diagnostic points at file %d", d.Pos.File)
			}
		}
	}
	if !second[1].Failed() {
		t.Fatalf("cached duplicate must still fail")
	}
	if len(timer.Report().Phases) != 3 {
		t.Fatalf("want load phase plus one per unit, got %+v", timer.Report().Phases)
	}

	// Another target is another key.
	opts.Target = layout.I386LinuxGNU()
	_, third, err := Run(context.Background(), paths, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached {
		t.Fatalf("target change must miss the cache")
	}
}

func TestCacheKey(t *testing.T) {
	var content [32]byte
	base := CacheKey(content, layout.X86_64LinuxGNU(), translate.NameRules{}, Selection{})
	if base.IsZero() {
		t.Fatalf("zero key")
	}
	if base != CacheKey(content, layout.X86_64LinuxGNU(), translate.NameRules{}, Selection{}) {
		t.Fatalf("key is not deterministic")
	}
	if base == CacheKey(content, layout.X86_64LinuxGNU(), translate.NameRules{CaseInsensitive: true}, Selection{}) {
		t.Fatalf("name rules must change the key")
	}
	signed := layout.X86_64LinuxGNU()
	signed.CharSigned = !signed.CharSigned
	if base == CacheKey(content, signed, translate.NameRules{}, Selection{}) {
		t.Fatalf("char signedness must change the key")
	}
	off := Selection{Off: translate.CategoryMacros}
	if base == CacheKey(content, layout.X86_64LinuxGNU(), translate.NameRules{}, off) {
		t.Fatalf("switched-off categories must change the key")
	}
	defs := Selection{Defines: []cdecl.MacroDef{{Name: "DEBUG", Body: "1"}}}
	if base == CacheKey(content, layout.X86_64LinuxGNU(), translate.NameRules{}, defs) {
		t.Fatalf("injected defines must change the key")
	}
	content[0] = 1
	if base == CacheKey(content, layout.X86_64LinuxGNU(), translate.NameRules{}, Selection{}) {
		t.Fatalf("content must change the key")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	c, err := OpenDiskCache(filepath.Join(t.TempDir(), "c"))
	if err != nil {
		t.Fatal(err)
	}
	key := CacheKey([32]byte{}, layout.X86_64LinuxGNU(), translate.NameRules{}, Selection{})
	if err := c.Put(key, &DiskPayload{Path: "x.toml"}); err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	if ok, err := c.Get(key, &out); err != nil || !ok || out.Path != "x.toml" {
		t.Fatalf("Get = %v, %v, %+v", ok, err, out)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.Get(key, &out); err != nil || ok {
		t.Fatalf("entry survived DropAll: %v, %v", ok, err)
	}
}

func TestListUnitFiles(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "a.toml", goodUnit)
	writeUnit(t, dir, "modgen.toml", "")
	writeUnit(t, dir, "notes.txt", "")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeUnit(t, filepath.Join(dir, "sub"), "b.yaml", "name: b\n")
	if err := os.Mkdir(filepath.Join(dir, ".hidden"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeUnit(t, filepath.Join(dir, ".hidden"), "c.json", "{}")

	files, err := ListUnitFiles([]string{dir, filepath.Join(dir, "a.toml")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.toml"), filepath.Join(dir, "sub", "b.yaml")}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("got %v, want %v", files, want)
		}
	}
	if _, err := ListUnitFiles([]string{filepath.Join(dir, "sub", "..", "notes.txt")}); err != nil {
		t.Fatalf("explicit file arguments are kept: %v", err)
	}
}

func TestAppendTimings(t *testing.T) {
	timer := observ.NewTimer()
	timer.Time("decode", func() string { return "" })
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IOLoadFailed, "x", source.Pos{}, "boom"))
	AppendTimings(bag, timer.Report())
	if bag.Count(diag.ObsTimings) != 1 {
		t.Fatalf("timings diagnostic missing: %+v", bag.Items())
	}
	d := bag.Items()[1]
	if d.Severity != diag.SevInfo || len(d.Notes) != 1 {
		t.Fatalf("unexpected timings diagnostic %+v", d)
	}
}
