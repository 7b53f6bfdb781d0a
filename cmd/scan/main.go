// Command scan loads a Galion lidar scan file, reports its
// classification, and optionally slices it at a requested coordinate or
// estimates the mean horizontal wind from an arc scan.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/WildGenie/mmctools/internal/config"
	"github.com/WildGenie/mmctools/internal/lidar"
	"github.com/WildGenie/mmctools/internal/lidar/galion"
	"github.com/WildGenie/mmctools/internal/units"
)

var (
	input      = flag.String("input", "", "path to the scan file (required)")
	format     = flag.String("format", "", "input format: csv or netcdf (default: by extension)")
	configPath = flag.String("config", "", "optional YAML scan config")
	minRange   = flag.Float64("min-range", 0, "offset added to gate index * gate size [m]")
	gateSize   = flag.Float64("gate-size", 0, "range gate size [m] (default: instrument default)")
	rQuery     = flag.Float64("r", math.NaN(), "slice at this range [m]")
	azQuery    = flag.Float64("az", math.NaN(), "slice at this azimuth [deg]")
	elQuery    = flag.Float64("el", math.NaN(), "slice at this elevation [deg]")
	wind       = flag.Bool("wind", false, "estimate mean horizontal wind from the scan")
	column     = flag.String("column", "doppler", "radial velocity column for -wind")
	speedUnits = flag.String("units", units.MPS, "speed units for wind output: "+units.GetValidUnitsString())
	verbose    = flag.Bool("verbose", false, "log classification and nearest-match snapping")
	maxRows    = flag.Int("max-rows", 10, "maximum rows to print for a slice")
)

func main() {
	flag.Parse()
	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !units.IsValid(*speedUnits) {
		log.Fatalf("[scan] invalid units %q, expected one of: %s", *speedUnits, units.GetValidUnitsString())
	}

	cfg := &config.ScanConfig{}
	if *configPath != "" {
		loaded, err := config.LoadScanConfig(*configPath)
		if err != nil {
			log.Fatalf("[scan] %v", err)
		}
		cfg = loaded
	}
	if *minRange != 0 {
		cfg.MinimumRange = *minRange
	}
	if *gateSize != 0 {
		cfg.RangeGateSize = *gateSize
	}

	fileFormat, err := resolveFormat(*format, cfg.Format, *input)
	if err != nil {
		log.Fatalf("[scan] %v", err)
	}

	scan, err := load(fileFormat, *input, cfg)
	if err != nil {
		log.Fatalf("[scan] %v", err)
	}
	printSummary(scan)

	if q := query(); q != nil {
		slice, err := scan.Get(q.r, q.az, q.el)
		if err != nil {
			log.Fatalf("[scan] %v", err)
		}
		printSlice(slice)
	}

	if *wind {
		tbl := scan.Table()
		w, err := lidar.EstimateMeanWind(tbl, *column, nil)
		if err != nil {
			log.Fatalf("[scan] %v", err)
		}
		fmt.Printf("mean wind: %.2f %s from %.1f deg\n",
			units.ConvertSpeed(w.Speed, *speedUnits), *speedUnits, w.Direction)
	}
}

// resolveFormat picks the input format from the flag, then the config,
// then the file extension.
func resolveFormat(flagFormat, cfgFormat, path string) (string, error) {
	for _, f := range []string{flagFormat, cfgFormat} {
		switch f {
		case config.FormatCSV, config.FormatNetCDF:
			return f, nil
		case "":
		default:
			return "", fmt.Errorf("unknown format %q, expected %q or %q", f, config.FormatCSV, config.FormatNetCDF)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".cdf":
		return config.FormatNetCDF, nil
	case ".csv", ".txt":
		return config.FormatCSV, nil
	default:
		return "", fmt.Errorf("cannot infer format from %q, pass -format", path)
	}
}

func load(fileFormat, path string, cfg *config.ScanConfig) (*lidar.Scan, error) {
	switch fileFormat {
	case config.FormatNetCDF:
		return galion.LoadPerdigao(path, galion.PerdigaoOptions{
			MinimumRange:  cfg.MinimumRange,
			RangeGateSize: cfg.RangeGateSize,
			RangeGateName: cfg.Rename.RangeGate,
			AzimuthName:   cfg.Rename.Azimuth,
			ElevationName: cfg.Rename.Elevation,
			Verbose:       *verbose,
		})
	default:
		opts := galion.PEIWEEOptions{
			MinimumRange:  cfg.MinimumRange,
			RangeGateSize: cfg.RangeGateSize,
			Verbose:       *verbose,
		}
		if gw := cfg.Filters.RangeGates; gw != nil {
			opts.RangeGates = &lidar.GateWindow{Min: gw.Min, Max: gw.Max}
		}
		if rw := cfg.Filters.Ranges; rw != nil {
			opts.Ranges = &lidar.RangeWindow{Min: rw.Min, Max: rw.Max}
		}
		if iw := cfg.Filters.Intensity; iw != nil {
			opts.MinIntensity = iw.Min
			opts.MaxIntensity = iw.Max
		}
		return galion.LoadPEIWEE(path, opts)
	}
}

type sliceQuery struct {
	r, az, el *float64
}

// query returns nil when no slice coordinate flag was set.
func query() *sliceQuery {
	q := &sliceQuery{}
	if !math.IsNaN(*rQuery) {
		q.r = rQuery
	}
	if !math.IsNaN(*azQuery) {
		q.az = azQuery
	}
	if !math.IsNaN(*elQuery) {
		q.el = elQuery
	}
	if q.r == nil && q.az == nil && q.el == nil {
		return nil
	}
	return q
}

func printSummary(s *lidar.Scan) {
	fmt.Printf("%s: %d rows", s.Type(), s.Len())
	if r := s.R(); r != nil {
		fmt.Printf(", %d range gates (%g m each, valid [%g, %g))", len(r), s.GateSize(), s.RMin(), s.RMax())
	}
	if az := s.Az(); az != nil {
		fmt.Printf(", %d azimuths", len(az))
	}
	if el := s.El(); el != nil {
		fmt.Printf(", %d elevations", len(el))
	}
	fmt.Println()
}

func printSlice(t *lidar.Table) {
	fmt.Printf("slice: %d rows, key %v, columns %v\n", t.Len(), t.Axes().Names(), t.Columns())
	n := t.Len()
	if n > *maxRows {
		n = *maxRows
	}
	for i := 0; i < n; i++ {
		row := t.At(i)
		var key []string
		if t.Axes().Has(lidar.AxisRange) {
			key = append(key, fmt.Sprintf("r=%g", row.Range))
		}
		if t.Axes().Has(lidar.AxisAzimuth) {
			key = append(key, fmt.Sprintf("az=%g", row.Azimuth))
		}
		if t.Axes().Has(lidar.AxisElevation) {
			key = append(key, fmt.Sprintf("el=%g", row.Elevation))
		}
		fmt.Printf("  %s", strings.Join(key, " "))
		for _, name := range t.Columns() {
			fmt.Printf(" %s=%g", name, row.Values[name])
		}
		fmt.Println()
	}
	if t.Len() > n {
		fmt.Printf("  ... %d more rows\n", t.Len()-n)
	}
}
