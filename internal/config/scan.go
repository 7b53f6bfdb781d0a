// Package config loads YAML scan configuration for the scan CLI, binding
// the loader knobs (gate geometry, variable renames, post-filters) so a
// load can be reproduced from a single file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scan file formats.
const (
	FormatCSV    = "csv"
	FormatNetCDF = "netcdf"
)

// Window is an optional min/max bound pair. Nil bounds are open.
type Window struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// GateWindow bounds a filter by range-gate index. Nil bounds are open.
type GateWindow struct {
	Min *int `yaml:"min"`
	Max *int `yaml:"max"`
}

// Rename maps instrument variable names onto the three coordinate roles
// for NetCDF input. Empty fields keep the campaign defaults.
type Rename struct {
	RangeGate string `yaml:"rangeGate"`
	Azimuth   string `yaml:"azimuth"`
	Elevation string `yaml:"elevation"`
}

// Filters configures the post-load masking filters of the PEIWEE loader.
type Filters struct {
	RangeGates *GateWindow `yaml:"rangeGates"`
	Ranges     *Window     `yaml:"ranges"`
	Intensity  *Window     `yaml:"intensity"`
}

// ScanConfig is the root configuration for a scan load.
type ScanConfig struct {
	// Format selects the loader: "csv" (PEIWEE) or "netcdf" (Perdigao).
	Format string `yaml:"format"`
	// MinimumRange is the offset [m] added to gate index * gate size.
	MinimumRange float64 `yaml:"minimumRange"`
	// RangeGateSize is the gate length [m]; the loader default when 0.
	RangeGateSize float64 `yaml:"rangeGateSize"`
	Rename        Rename  `yaml:"rename"`
	Filters       Filters `yaml:"filters"`
}

// maxConfigSize caps config files at 1MB.
const maxConfigSize = 1 * 1024 * 1024

// LoadScanConfig loads a ScanConfig from a YAML file. Fields omitted
// from the file keep their zero values, so partial configs are safe.
func LoadScanConfig(path string) (*ScanConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &ScanConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values; an empty Format is allowed so the CLI
// can fall back to extension detection.
func (c *ScanConfig) Validate() error {
	if c.Format != "" && c.Format != FormatCSV && c.Format != FormatNetCDF {
		return fmt.Errorf("unknown format %q, expected %q or %q", c.Format, FormatCSV, FormatNetCDF)
	}
	if c.RangeGateSize < 0 {
		return fmt.Errorf("rangeGateSize must not be negative, got %g", c.RangeGateSize)
	}
	if c.MinimumRange < 0 {
		return fmt.Errorf("minimumRange must not be negative, got %g", c.MinimumRange)
	}
	return nil
}
