package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"modgen/internal/config"
	"modgen/internal/driver"
	"modgen/internal/layout"
	"modgen/internal/translate"
)

// applyColor resolves --color for stderr, where diagnostics go.
func applyColor(cmd *cobra.Command) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("unknown color value: %s (expected auto|on|off)", colorFlag)
	}
	return nil
}

// settings is the project file merged with command-line overrides.
type settings struct {
	manifest *config.Manifest // nil without a project file
	cfg      config.Config

	target layout.Target
	rules  translate.NameRules
	sel    driver.Selection
}

// loadManifest honours --config, otherwise searches upward from the working
// directory. A missing project file is not an error.
func loadManifest(cmd *cobra.Command) (*config.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	manifest, ok, err := config.Discover(wd)
	if err != nil || !ok {
		return nil, err
	}
	return manifest, nil
}

// resolveSettings applies the target flags registered by addTargetFlags on
// top of the project file.
func resolveSettings(cmd *cobra.Command) (*settings, error) {
	manifest, err := loadManifest(cmd)
	if err != nil {
		return nil, err
	}
	s := &settings{manifest: manifest, cfg: config.Default()}
	if manifest != nil {
		s.cfg = manifest.Config
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		if s.cfg.Target.Name, err = flags.GetString("target"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("case-insensitive") {
		if s.cfg.Target.CaseInsensitive, err = flags.GetBool("case-insensitive"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("char-signed") {
		v, err := flags.GetBool("char-signed")
		if err != nil {
			return nil, err
		}
		s.cfg.Target.CharSigned = &v
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		if s.cfg.Output.Format, err = flags.GetString("format"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("diagnostics") != nil && flags.Changed("diagnostics") {
		if s.cfg.Output.Diagnostics, err = flags.GetString("diagnostics"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("out-dir") != nil && flags.Changed("out-dir") {
		if s.cfg.Output.Dir, err = flags.GetString("out-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("cache") != nil && flags.Changed("cache") {
		if s.cfg.Cache.Enabled, err = flags.GetBool("cache"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("cache-dir") != nil && flags.Changed("cache-dir") {
		if s.cfg.Cache.Dir, err = flags.GetString("cache-dir"); err != nil {
			return nil, err
		}
		s.cfg.Cache.Enabled = true
	}
	if flags.Lookup("off") != nil && flags.Changed("off") {
		off, err := flags.GetStringArray("off")
		if err != nil {
			return nil, err
		}
		s.cfg.Translate.Off = append(s.cfg.Translate.Off, off...)
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if s.target, err = s.cfg.LayoutTarget(); err != nil {
		return nil, err
	}
	s.rules = translate.NameRules{CaseInsensitive: s.cfg.Target.CaseInsensitive}
	if err := s.resolveSelection(cmd); err != nil {
		return nil, err
	}
	return s, nil
}

// resolveSelection collects [translate] from the project file, then
// --defines and --define in that order; a later define of a name wins.
func (s *settings) resolveSelection(cmd *cobra.Command) error {
	root := ""
	if s.manifest != nil {
		root = s.manifest.Root
	}
	off, defs, err := s.cfg.Selection(root)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Lookup("defines") != nil {
		path, err := flags.GetString("defines")
		if err != nil {
			return fmt.Errorf("failed to get defines flag: %w", err)
		}
		if path != "" {
			more, err := config.ReadDefines(path)
			if err != nil {
				return err
			}
			defs = append(defs, more...)
		}
	}
	if flags.Lookup("define") != nil {
		raw, err := flags.GetStringArray("define")
		if err != nil {
			return fmt.Errorf("failed to get define flag: %w", err)
		}
		for _, def := range raw {
			d, err := config.ParseDefine(def)
			if err != nil {
				return fmt.Errorf("--define: %w", err)
			}
			defs = append(defs, d)
		}
	}
	s.sel = driver.Selection{Off: off, Defines: defs}
	return nil
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "", "target triple (x86_64-linux-gnu|i386-linux-gnu|aarch64-linux-gnu)")
	cmd.Flags().Bool("case-insensitive", false, "the target language folds identifier case")
	cmd.Flags().Bool("char-signed", false, "override the signedness of plain char")
}

// cacheDir resolves the cache directory: relative to the project root when
// a project file exists, else the per-user cache.
func (s *settings) cacheDir() (string, error) {
	if !s.cfg.Cache.Enabled {
		return "", nil
	}
	if s.manifest != nil {
		m := *s.manifest
		m.Config = s.cfg
		return m.CacheDir(), nil
	}
	if s.cfg.Cache.Dir != "" {
		return s.cfg.Cache.Dir, nil
	}
	return defaultUserCacheDir()
}
