// Package config loads modgen.toml, the project file that fixes the target
// and output settings for every run started below its directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"modgen/internal/cdecl"
	"modgen/internal/layout"
	"modgen/internal/translate"
)

// FileName is the project file looked up from the working directory upward.
const FileName = "modgen.toml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Target    TargetConfig    `toml:"target"`
	Output    OutputConfig    `toml:"output"`
	Cache     CacheConfig     `toml:"cache"`
	Units     UnitsConfig     `toml:"units"`
	Translate TranslateConfig `toml:"translate"`
}

type TargetConfig struct {
	Name            string `toml:"name"`
	CaseInsensitive bool   `toml:"case_insensitive"`
	PtrSize         int    `toml:"ptr_size"`
	CharSigned      *bool  `toml:"char_signed"`
}

type OutputConfig struct {
	Format      string `toml:"format"`      // text | json
	Diagnostics string `toml:"diagnostics"` // pretty | json
	Dir         string `toml:"dir"`
}

type CacheConfig struct {
	Enabled         bool   `toml:"enabled"`
	Dir             string `toml:"dir"`
	ClassifyEntries int    `toml:"classify_entries"`
}

type UnitsConfig struct {
	// Include lists unit files or glob patterns relative to the project root.
	Include []string `toml:"include"`
}

type TranslateConfig struct {
	// Off lists categories left out: functions, variables, enums, macros.
	Off []string `toml:"off"`
	// Defines are NAME=BODY (or bare NAME, meaning 1) macros visible to
	// every unit's macro bodies.
	Defines []string `toml:"defines"`
	// DefinesFile holds one define per line, relative to the project root.
	DefinesFile string `toml:"defines_file"`
}

// Default is the configuration used without a project file.
func Default() Config {
	return Config{
		Target: TargetConfig{Name: layout.X86_64LinuxGNU().Triple},
		Output: OutputConfig{Format: "text", Diagnostics: "pretty"},
		Cache:  CacheConfig{ClassifyEntries: 4096},
	}
}

// Manifest is a loaded project file.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the project file above startDir. ok is false
// when there is none.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load reads the project file at path, filling unset values from Default.
func Load(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, ok := layout.TargetByTriple(c.Target.Name); !ok {
		return fmt.Errorf("%w: [target].name %q (known: %s)", ErrInvalid, c.Target.Name, strings.Join(layout.KnownTriples(), ", "))
	}
	switch c.Target.PtrSize {
	case 0, 4, 8:
	default:
		return fmt.Errorf("%w: [target].ptr_size must be 4 or 8, got %d", ErrInvalid, c.Target.PtrSize)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: [output].format %q (expected text or json)", ErrInvalid, c.Output.Format)
	}
	switch c.Output.Diagnostics {
	case "pretty", "json":
	default:
		return fmt.Errorf("%w: [output].diagnostics %q (expected pretty or json)", ErrInvalid, c.Output.Diagnostics)
	}
	if c.Cache.ClassifyEntries < 0 {
		return fmt.Errorf("%w: [cache].classify_entries must not be negative", ErrInvalid)
	}
	if _, err := translate.ParseCategories(c.Translate.Off); err != nil {
		return fmt.Errorf("%w: [translate].off: %w", ErrInvalid, err)
	}
	for _, def := range c.Translate.Defines {
		if _, err := ParseDefine(def); err != nil {
			return fmt.Errorf("%w: [translate].defines: %w", ErrInvalid, err)
		}
	}
	return nil
}

// Selection resolves [translate]: the categories switched off and the
// injected defines, defines_file first. root anchors a relative
// defines_file; empty means the working directory.
func (c Config) Selection(root string) (translate.Category, []cdecl.MacroDef, error) {
	off, err := translate.ParseCategories(c.Translate.Off)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: [translate].off: %w", ErrInvalid, err)
	}
	var defs []cdecl.MacroDef
	if path := c.Translate.DefinesFile; path != "" {
		if !filepath.IsAbs(path) && root != "" {
			path = filepath.Join(root, path)
		}
		if defs, err = ReadDefines(path); err != nil {
			return 0, nil, err
		}
	}
	for _, def := range c.Translate.Defines {
		d, err := ParseDefine(def)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: [translate].defines: %w", ErrInvalid, err)
		}
		defs = append(defs, d)
	}
	return off, defs, nil
}

// ParseDefine reads NAME=BODY. A bare NAME defines it as 1, as -D does.
func ParseDefine(def string) (cdecl.MacroDef, error) {
	name, body, ok := strings.Cut(def, "=")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t()") {
		return cdecl.MacroDef{}, fmt.Errorf("define %q: expected NAME=BODY", def)
	}
	if !ok {
		body = "1"
	}
	return cdecl.MacroDef{Name: name, Body: body}, nil
}

// ReadDefines parses a defines file: one define per line, blank lines and
// lines starting with # skipped.
func ReadDefines(path string) ([]cdecl.MacroDef, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defines file: %w", err)
	}
	var defs []cdecl.MacroDef
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := ParseDefine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// LayoutTarget is the layout target with the file's overrides applied.
func (c Config) LayoutTarget() (layout.Target, error) {
	t, ok := layout.TargetByTriple(c.Target.Name)
	if !ok {
		return layout.Target{}, fmt.Errorf("%w: unknown target %q", ErrInvalid, c.Target.Name)
	}
	if c.Target.PtrSize != 0 {
		t.PtrSize = c.Target.PtrSize
		t.PtrAlign = c.Target.PtrSize
	}
	if c.Target.CharSigned != nil {
		t.CharSigned = *c.Target.CharSigned
	}
	return t, nil
}

// UnitPaths expands [units].include against the project root, in order and
// without duplicates.
func (m *Manifest) UnitPaths() ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, pattern := range m.Config.Units.Include {
		full := filepath.Join(m.Root, filepath.FromSlash(pattern))
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%s: [units].include %q: %w", m.Path, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: [units].include %q matches no files", m.Path, pattern)
		}
		for _, p := range matches {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

// CacheDir is the cache directory, relative paths resolved against the
// project root; empty when caching is off.
func (m *Manifest) CacheDir() string {
	c := m.Config.Cache
	if !c.Enabled {
		return ""
	}
	dir := c.Dir
	if dir == "" {
		dir = ".modgen-cache"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(m.Root, dir)
	}
	return dir
}
