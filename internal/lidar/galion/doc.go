// Package galion loads scan files recorded by Galion scanning lidars
// into lidar.Scan containers. Two deployments are supported: the
// Perdigao field campaign (NetCDF classic files, one record per beam)
// and the Prince Edward Island Wind Energy Experiment (delimited text
// with fixed column names).
//
// Both loaders translate the instrument's integer range-gate index into
// a physical gate-center range, minimum_range + gate*gate_size +
// gate_size/2, and hand the resulting table to lidar.NewScan for
// classification and gate validation.
package galion
