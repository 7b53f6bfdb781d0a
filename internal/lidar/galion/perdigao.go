package galion

import (
	"fmt"
	"io"
	"log"
	"os"
	"slices"

	"github.com/ctessum/cdf"

	"github.com/WildGenie/mmctools/internal/lidar"
)

// Default variable names in Perdigao campaign files.
const (
	DefaultRangeGateName = "Range gates"
	DefaultAzimuthName   = "Azimuth angle"
	DefaultElevationName = "Elevation angle"
)

// PerdigaoOptions configures LoadPerdigao.
type PerdigaoOptions struct {
	// MinimumRange is the offset [m] added to gate index * gate size.
	MinimumRange float64
	// RangeGateSize is the gate length [m]; DefaultRangeGateSize when 0.
	RangeGateSize float64

	// RangeGateName, AzimuthName and ElevationName rename the coordinate
	// variables when a file deviates from the campaign defaults.
	RangeGateName string
	AzimuthName   string
	ElevationName string

	Verbose bool
	Logger  *log.Logger
}

// LoadPerdigao reads a single Perdigao campaign scan from a NetCDF
// classic file. Range gates are stored as integers; not all (r,az,el)
// points are necessarily present.
func LoadPerdigao(path string, opts PerdigaoOptions) (*lidar.Scan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan file: %w", err)
	}
	defer f.Close()
	s, err := LoadPerdigaoFrom(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadPerdigaoFrom reads a single Perdigao campaign scan from r. Every
// variable must be one-dimensional over the dimension "y"; the three
// coordinate variables become the table key and all other variables
// become payload columns under their file names.
func LoadPerdigaoFrom(r io.ReaderAt, opts PerdigaoOptions) (*lidar.Scan, error) {
	gateSize := opts.RangeGateSize
	if gateSize == 0 {
		gateSize = DefaultRangeGateSize
	}
	gateName := opts.RangeGateName
	if gateName == "" {
		gateName = DefaultRangeGateName
	}
	azName := opts.AzimuthName
	if azName == "" {
		azName = DefaultAzimuthName
	}
	elName := opts.ElevationName
	if elName == "" {
		elName = DefaultElevationName
	}

	// cdf.Open requires a ReaderWriterAt, but only reads from it here;
	// the nil WriterAt is never invoked on the read-only path.
	nc, err := cdf.Open(struct {
		io.ReaderAt
		io.WriterAt
	}{ReaderAt: r})
	if err != nil {
		return nil, fmt.Errorf("failed to read NetCDF header: %w", err)
	}
	vars := nc.Header.Variables()
	if len(vars) == 0 {
		return nil, fmt.Errorf("no variables in file")
	}

	n := -1
	for _, v := range vars {
		dims := nc.Header.Dimensions(v)
		if len(dims) != 1 || dims[0] != "y" {
			return nil, fmt.Errorf("expected a single dimension \"y\", variable %q has %v", v, dims)
		}
		if length := nc.Header.Lengths(v)[0]; n < 0 {
			n = length
		} else if length != n {
			return nil, fmt.Errorf("variable %q has %d records, expected %d", v, length, n)
		}
	}

	columns := make(map[string][]float64, len(vars))
	for _, v := range vars {
		vals, err := readVariable(nc, v, n)
		if err != nil {
			return nil, fmt.Errorf("failed to read variable %q: %w", v, err)
		}
		columns[v] = vals
	}

	gates, ok := columns[gateName]
	if !ok {
		return nil, fmt.Errorf("no range gate variable %q in file", gateName)
	}
	azimuths, ok := columns[azName]
	if !ok {
		return nil, fmt.Errorf("no azimuth variable %q in file", azName)
	}
	elevations, ok := columns[elName]
	if !ok {
		return nil, fmt.Errorf("no elevation variable %q in file", elName)
	}
	payload := make([]string, 0, len(columns)-3)
	for _, v := range vars {
		if v != gateName && v != azName && v != elName {
			payload = append(payload, v)
		}
	}

	samples := make([]lidar.Sample, n)
	for i := 0; i < n; i++ {
		s := lidar.Sample{
			Range:     gateCenter(gates[i], opts.MinimumRange, gateSize),
			Azimuth:   azimuths[i],
			Elevation: elevations[i],
			Values:    make(map[string]float64, len(payload)),
		}
		for _, name := range payload {
			s.Values[name] = columns[name][i]
		}
		samples[i] = s
	}

	tbl, err := lidar.NewTable(lidar.HasRange|lidar.HasAzimuth|lidar.HasElevation, samples)
	if err != nil {
		return nil, err
	}
	return lidar.NewScan(tbl, scanOptions(gateSize, opts.Verbose, opts.Logger)...)
}

// readVariable reads a whole 1-D variable and widens it to float64.
func readVariable(f *cdf.File, name string, n int) ([]float64, error) {
	r := f.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return nil, err
	}
	switch vals := buf.(type) {
	case []float64:
		return slices.Clone(vals), nil
	case []float32:
		return widen(vals), nil
	case []int32:
		return widen(vals), nil
	case []int16:
		return widen(vals), nil
	case []int8:
		return widen(vals), nil
	default:
		return nil, fmt.Errorf("unsupported variable type %T", buf)
	}
}

func widen[T float32 | int32 | int16 | int8](vals []T) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}
