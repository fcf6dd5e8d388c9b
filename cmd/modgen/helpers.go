package main

import (
	"time"

	"github.com/fatih/color"

	"modgen/internal/driver"
)

func colorEnabled() bool { return !color.NoColor }

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func defaultUserCacheDir() (string, error) {
	return driver.DefaultCacheDir("modgen")
}
