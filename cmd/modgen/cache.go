package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"modgen/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk translation cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached translation",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheClearCmd.Flags().String("cache-dir", "", "cache directory (default: from modgen.toml or the user cache)")
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	// clearing applies even when the project keeps caching off
	s.cfg.Cache.Enabled = true
	dir, err := s.cacheDir()
	if err != nil {
		return err
	}
	c, err := driver.OpenDiskCache(dir)
	if err != nil {
		return err
	}
	if err := c.DropAll(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", dir)
	return nil
}
