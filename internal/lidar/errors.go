package lidar

import "errors"

var (
	// ErrBadAxes reports a table key whose combination of axes does not
	// correspond to any supported scan type.
	ErrBadAxes = errors.New("unexpected key axes")

	// ErrMissingAxis reports an operation that needs a coordinate axis the
	// table does not carry and no constant override was supplied.
	ErrMissingAxis = errors.New("missing coordinate axis")

	// ErrOutOfRange reports a query coordinate outside the scan's valid
	// domain.
	ErrOutOfRange = errors.New("query out of range")

	// ErrNoQuery is returned by Get when no query coordinate is given.
	ErrNoQuery = errors.New("specify r, az, or el")

	// ErrInsufficientData reports a wind fit without enough usable
	// observations to determine both horizontal components.
	ErrInsufficientData = errors.New("insufficient data for wind fit")
)
