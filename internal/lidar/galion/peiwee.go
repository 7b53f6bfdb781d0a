package galion

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/WildGenie/mmctools/internal/lidar"
)

// DefaultRangeGateSize is the Galion's gate length in meters.
const DefaultRangeGateSize = 30.0

// Key columns every PEIWEE file must carry.
const (
	colRangeGate = "range_gate"
	colAzimuth   = "azimuth"
	colElevation = "elevation"
)

// PEIWEEOptions configures LoadPEIWEE.
type PEIWEEOptions struct {
	// MinimumRange is the offset [m] added to gate index * gate size.
	MinimumRange float64
	// RangeGateSize is the gate length [m]; DefaultRangeGateSize when 0.
	RangeGateSize float64

	// RangeGates and Ranges mask returns outside a gate-index or
	// absolute-range window after loading. See Scan.FilterByRange.
	RangeGates *lidar.GateWindow
	Ranges     *lidar.RangeWindow
	// MinIntensity and MaxIntensity mask returns outside an intensity
	// window after loading. See Scan.FilterByIntensity.
	MinIntensity *float64
	MaxIntensity *float64

	Verbose bool
	Logger  *log.Logger
}

// LoadPEIWEE reads a single PEIWEE scan from a delimited text file.
func LoadPEIWEE(path string, opts PEIWEEOptions) (*lidar.Scan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan file: %w", err)
	}
	defer f.Close()
	s, err := LoadPEIWEEFrom(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadPEIWEEFrom reads a single PEIWEE scan from r. The first record is
// the header and must contain the range_gate, azimuth and elevation
// columns; every other column becomes a payload column of the scan
// table. Empty payload fields load as NaN.
func LoadPEIWEEFrom(r io.Reader, opts PEIWEEOptions) (*lidar.Scan, error) {
	gateSize := opts.RangeGateSize
	if gateSize == 0 {
		gateSize = DefaultRangeGateSize
	}

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read scan records: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data: %d record(s)", len(records))
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	for _, required := range []string{colRangeGate, colAzimuth, colElevation} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("missing column %q, expected at least: %s,%s,%s",
				required, colRangeGate, colAzimuth, colElevation)
		}
	}

	samples := make([]lidar.Sample, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("invalid record at line %d: expected %d fields, got %d", line+2, len(header), len(record))
		}
		gate, err := strconv.ParseFloat(record[colIdx[colRangeGate]], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range gate at line %d: %v", line+2, err)
		}
		azimuth, err := strconv.ParseFloat(record[colIdx[colAzimuth]], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid azimuth at line %d: %v", line+2, err)
		}
		elevation, err := strconv.ParseFloat(record[colIdx[colElevation]], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid elevation at line %d: %v", line+2, err)
		}

		s := lidar.Sample{
			Range:     gateCenter(gate, opts.MinimumRange, gateSize),
			Azimuth:   azimuth,
			Elevation: elevation,
			Values:    make(map[string]float64, len(header)-3),
		}
		for name, idx := range colIdx {
			if name == colRangeGate || name == colAzimuth || name == colElevation {
				continue
			}
			raw := record[idx]
			if raw == "" {
				s.Values[name] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s at line %d: %v", name, line+2, err)
			}
			s.Values[name] = v
		}
		samples = append(samples, s)
	}

	tbl, err := lidar.NewTable(lidar.HasRange|lidar.HasAzimuth|lidar.HasElevation, samples)
	if err != nil {
		return nil, err
	}
	scan, err := lidar.NewScan(tbl, scanOptions(gateSize, opts.Verbose, opts.Logger)...)
	if err != nil {
		return nil, err
	}

	if opts.RangeGates != nil || opts.Ranges != nil {
		if err := scan.FilterByRange(opts.RangeGates, opts.Ranges); err != nil {
			return nil, err
		}
	}
	if err := scan.FilterByIntensity(opts.MinIntensity, opts.MaxIntensity); err != nil {
		return nil, err
	}
	return scan, nil
}

// gateCenter converts a range gate index to the range of the gate center.
func gateCenter(gate, minimumRange, gateSize float64) float64 {
	return minimumRange + gate*gateSize + gateSize/2
}

func scanOptions(gateSize float64, verbose bool, logger *log.Logger) []lidar.ScanOption {
	opts := []lidar.ScanOption{
		lidar.WithGateSize(gateSize),
		lidar.WithVerbose(verbose),
	}
	if logger != nil {
		opts = append(opts, lidar.WithLogger(logger))
	}
	return opts
}
