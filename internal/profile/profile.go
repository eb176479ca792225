// Package profile carries runtime configuration for the haicmetrics CLI.
package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to run the metrics toolchain.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the directory for session logs and the summary database
	Data string
	// DSN points to where haicmetrics stores computed summaries
	DSN string
	// Driver is the database driver (sqlite)
	Driver string
	// Version is the current version of the toolchain
	Version string

	// Metric parameters
	MetricProfile string   // HAIC_METRIC_PROFILE (core or full, default: core)
	RTMaxS        float64  // HAIC_RT_MAX_S (default: 5.0)
	BaselineS     *float64 // HAIC_BASELINE_S (optional)

	// Session logging
	PilotTag string // HAIC_PILOT_TAG (default: "")
	LogDir   string // HAIC_LOG_DIR (default: <Data>/logs)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from HAIC_* environment variables.
// Unset or empty variables leave the defaults in place.
func (p *Profile) FromEnv() {
	p.MetricProfile = getEnvOrDefault("HAIC_METRIC_PROFILE", "core")
	p.PilotTag = os.Getenv("HAIC_PILOT_TAG")
	p.LogDir = os.Getenv("HAIC_LOG_DIR")

	p.RTMaxS = 5.0
	if raw := os.Getenv("HAIC_RT_MAX_S"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			p.RTMaxS = v
		}
	}
	if raw := os.Getenv("HAIC_BASELINE_S"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			p.BaselineS = &v
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.MetricProfile != "core" && p.MetricProfile != "full" {
		p.MetricProfile = "core"
	}
	if p.RTMaxS <= 0 {
		p.RTMaxS = 5.0
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.LogDir == "" {
		p.LogDir = filepath.Join(dataDir, "logs")
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("haicmetrics_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
